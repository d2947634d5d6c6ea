package drive

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

const (
	// DefaultBaseURL is the Drive API host.
	DefaultBaseURL = "https://www.googleapis.com"

	// DefaultFields is the projection applied when the caller does not ask
	// for specific fields.
	DefaultFields = "files(id,name,mimeType,modifiedTime,owners(displayName,emailAddress)),nextPageToken"

	// DefaultPageSize bounds a listing when the caller gives no page size.
	DefaultPageSize = 50
)

// ListOptions narrows a file listing. Zero values fall back to the defaults
// above.
type ListOptions struct {
	Query     string
	PageSize  int
	Fields    string
	PageToken string
}

// Client issues Drive API calls through the refresh guard. Response bodies
// are relayed verbatim.
type Client struct {
	guard   *relay.Guard
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Drive API host, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// NewClient creates a Drive client backed by the given guard.
func NewClient(guard *relay.Guard, opts ...Option) *Client {
	c := &Client{
		guard:   guard,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFiles lists files in the user's Drive, most recently modified first.
func (c *Client) ListFiles(ctx context.Context, cred *session.Credential, opts ListOptions) (*relay.Result, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Fields == "" {
		opts.Fields = DefaultFields
	}

	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	params.Set("pageSize", strconv.Itoa(opts.PageSize))
	params.Set("fields", opts.Fields)
	if opts.PageToken != "" {
		params.Set("pageToken", opts.PageToken)
	}
	params.Set("spaces", "drive")
	params.Set("orderBy", "modifiedTime desc")

	listURL := c.baseURL + "/drive/v3/files?" + params.Encode()
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodGet, listURL, accessToken, nil)
	})
}
