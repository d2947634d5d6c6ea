package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UserInfo is the identity fetched from the userinfo endpoint after the
// first token exchange. It is fixed on the session credential at
// authorization time and never refetched.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FetchUserInfo retrieves the user's basic profile with a bearer-authenticated
// GET. Failures are returned as *UpstreamError so the front door can surface
// the upstream body verbatim.
func FetchUserInfo(ctx context.Context, client *http.Client, userinfoURL, accessToken string) (*UserInfo, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userinfoURL == "" {
		userinfoURL = DefaultUserinfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}
