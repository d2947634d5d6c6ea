package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

// DefaultBaseURL is the Docs API host.
const DefaultBaseURL = "https://docs.googleapis.com"

// Client issues Docs API calls through the refresh guard. Response bodies
// are relayed verbatim.
type Client struct {
	guard   *relay.Guard
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Docs API host, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// NewClient creates a Docs client backed by the given guard.
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

// Create creates an empty document with the given title.
func (c *Client) Create(ctx context.Context, cred *session.Credential, title string) (*relay.Result, error) {
	payload, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return nil, fmt.Errorf("failed to encode create request: %w", err)
	}

	createURL := c.baseURL + "/v1/documents"
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodPost, createURL, accessToken, payload)
	})
}

// AppendText appends text at the end of the document body.
func (c *Client) AppendText(ctx context.Context, cred *session.Credential, documentID, text string) (*relay.Result, error) {
	payload, err := json.Marshal(map[string]any{
		"requests": []map[string]any{
			{
				"insertText": map[string]any{
					"text":                 text,
					"endOfSegmentLocation": map[string]any{},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch update request: %w", err)
	}

	updateURL := c.baseURL + "/v1/documents/" + url.PathEscape(documentID) + ":batchUpdate"
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodPost, updateURL, accessToken, payload)
	})
}

// Get retrieves a document.
func (c *Client) Get(ctx context.Context, cred *session.Credential, documentID string) (*relay.Result, error) {
	getURL := c.baseURL + "/v1/documents/" + url.PathEscape(documentID)
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodGet, getURL, accessToken, nil)
	})
}

// DocumentID extracts the created document's id from a Docs API response
// body. Returns the empty string if the body has no documentId field.
func DocumentID(body []byte) string {
	var resp struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.DocumentID
}
