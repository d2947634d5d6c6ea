package sheets

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

const (
	// DefaultBaseURL is the Sheets API host.
	DefaultBaseURL = "https://sheets.googleapis.com"

	// DefaultValueInputOption parses appended values the way the Sheets UI
	// would (dates, formulas, numbers).
	DefaultValueInputOption = "USER_ENTERED"
)

// Client issues Sheets API calls through the refresh guard. Response bodies
// are relayed verbatim.
type Client struct {
	guard   *relay.Guard
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Sheets API host, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// NewClient creates a Sheets client backed by the given guard.
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

// Create creates an empty spreadsheet with the given title.
func (c *Client) Create(ctx context.Context, cred *session.Credential, title string) (*relay.Result, error) {
	payload, err := json.Marshal(map[string]any{
		"properties": map[string]string{"title": title},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode create request: %w", err)
	}

	createURL := c.baseURL + "/v4/spreadsheets"
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodPost, createURL, accessToken, payload)
	})
}

// AppendValues appends rows of cell values after the given A1 range.
// valueInputOption falls back to DefaultValueInputOption when empty.
func (c *Client) AppendValues(ctx context.Context, cred *session.Credential, spreadsheetID, a1Range string, values [][]any, valueInputOption string) (*relay.Result, error) {
	if valueInputOption == "" {
		valueInputOption = DefaultValueInputOption
	}

	payload, err := json.Marshal(map[string]any{"values": values})
	if err != nil {
		return nil, fmt.Errorf("failed to encode append request: %w", err)
	}

	appendURL := c.baseURL + "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(a1Range) + ":append?valueInputOption=" + url.QueryEscape(valueInputOption)
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodPost, appendURL, accessToken, payload)
	})
}

// GetValues reads cell values for the given A1 range.
func (c *Client) GetValues(ctx context.Context, cred *session.Credential, spreadsheetID, a1Range string) (*relay.Result, error) {
	getURL := c.baseURL + "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(a1Range)
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodGet, getURL, accessToken, nil)
	})
}

// SpreadsheetID extracts the created spreadsheet's id from a Sheets API
// response body. Returns the empty string if the body has no spreadsheetId
// field.
func SpreadsheetID(body []byte) string {
	var resp struct {
		SpreadsheetID string `json:"spreadsheetId"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.SpreadsheetID
}
