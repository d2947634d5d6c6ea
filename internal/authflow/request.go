package authflow

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// PendingAuthRequest is the client authorization request captured at the
// start of an OAuth flow and round-tripped through Google's redirect as the
// state parameter.
type PendingAuthRequest struct {
	ResponseType        string   `json:"responseType"`
	ClientID            string   `json:"clientId"`
	RedirectURI         string   `json:"redirectUri"`
	Scope               []string `json:"scope"`
	State               string   `json:"state"`
	CodeChallenge       string   `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string   `json:"codeChallengeMethod,omitempty"`
}

// ParsePendingAuthRequest reads a client authorization request from the
// query parameters of GET /authorize.
func ParsePendingAuthRequest(r *http.Request) *PendingAuthRequest {
	q := r.URL.Query()

	var scope []string
	if raw := q.Get("scope"); raw != "" {
		scope = strings.Fields(raw)
	}

	return &PendingAuthRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               scope,
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}
}

// EncodeState serializes the pending request for use as the state parameter
// on the Google redirect: base64 of its JSON form.
func (p *PendingAuthRequest) EncodeState() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode pending auth request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeState reverses EncodeState at the /callback hop.
func DecodeState(state string) (*PendingAuthRequest, error) {
	data, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return nil, fmt.Errorf("state is not valid base64: %w", err)
	}

	var pending PendingAuthRequest
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("state is not a valid pending auth request: %w", err)
	}
	return &pending, nil
}
