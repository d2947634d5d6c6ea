package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

// DefaultBaseURL is the Gmail API host.
const DefaultBaseURL = "https://gmail.googleapis.com"

// Client issues Gmail API calls through the refresh guard. Response bodies
// are relayed verbatim; the client never interprets them.
type Client struct {
	guard   *relay.Guard
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Gmail API host, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// NewClient creates a Gmail client backed by the given guard.
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

// Send sends a plain-text email as the authorized user.
func (c *Client) Send(ctx context.Context, cred *session.Credential, to, subject, body string) (*relay.Result, error) {
	raw := EncodeMessage(to, subject, body)
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode send request: %w", err)
	}

	url := c.baseURL + "/gmail/v1/users/me/messages/send"
	return c.guard.Do(ctx, cred, func(accessToken string) (*http.Request, error) {
		return relay.NewJSONRequest(http.MethodPost, url, accessToken, payload)
	})
}

// EncodeMessage builds an RFC 2822 plain-text message and encodes it in the
// URL-safe base64 form the Gmail API expects in the "raw" field.
func EncodeMessage(to, subject, body string) string {
	message := strings.Join([]string{
		"To: " + to,
		"Subject: " + subject,
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")
	return base64.RawURLEncoding.EncodeToString([]byte(message))
}
