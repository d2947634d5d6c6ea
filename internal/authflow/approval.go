package authflow

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

const (
	// approvalCookieName stores the set of client ids the user has already
	// approved on this browser.
	approvalCookieName = "mcp-approved-clients"

	approvalCookieMaxAge = 30 * 24 * time.Hour
)

// approvedClients returns the client ids carried by a validly signed
// approval cookie. A missing, malformed, or tampered cookie yields nil.
func approvedClients(r *http.Request, key []byte) []string {
	cookie, err := r.Cookie(approvalCookieName)
	if err != nil {
		return nil
	}

	// Value layout: hex(hmac) "." base64(json array of client ids)
	sig, payload, ok := strings.Cut(cookie.Value, ".")
	if !ok || sig == "" || payload == "" {
		return nil
	}

	if !hmac.Equal([]byte(sig), []byte(signPayload(payload, key))) {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}
	return ids
}

// ClientApproved reports whether this browser already approved the client.
func ClientApproved(r *http.Request, clientID string, key []byte) bool {
	for _, id := range approvedClients(r, key) {
		if id == clientID {
			return true
		}
	}
	return false
}

// ApprovalCookie returns the Set-Cookie recording approval of clientID in
// addition to any previously approved clients.
func ApprovalCookie(r *http.Request, clientID string, key []byte) (*http.Cookie, error) {
	ids := approvedClients(r, key)
	for _, id := range ids {
		if id == clientID {
			return signedApprovalCookie(ids, key)
		}
	}
	return signedApprovalCookie(append(ids, clientID), key)
}

func signedApprovalCookie(ids []string, key []byte) (*http.Cookie, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approved clients: %w", err)
	}
	payload := base64.StdEncoding.EncodeToString(data)

	return &http.Cookie{
		Name:     approvalCookieName,
		Value:    signPayload(payload, key) + "." + payload,
		Path:     "/",
		MaxAge:   int(approvalCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func signPayload(payload string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

var approvalTemplate = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Authorize {{.ClientName}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>
    body { font-family: system-ui, sans-serif; max-width: 480px; margin: 4rem auto; padding: 0 1rem; }
    .card { border: 1px solid #ddd; border-radius: 8px; padding: 2rem; }
    button { background: #1a73e8; color: #fff; border: 0; border-radius: 4px; padding: 0.6rem 1.4rem; font-size: 1rem; cursor: pointer; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.ServerName}}</h1>
    <p>{{.ServerDescription}}</p>
    <p><strong>{{.ClientName}}</strong> is requesting access to your Google account through this server.</p>
    <form method="post" action="/authorize">
      <input type="hidden" name="state" value="{{.State}}">
      <button type="submit">Approve</button>
    </form>
  </div>
</body>
</html>
`))

type approvalPage struct {
	ServerName        string
	ServerDescription string
	ClientName        string
	State             string
}

// RenderApprovalDialog writes the consent form holding the pending request
// as opaque state in a hidden form field.
func RenderApprovalDialog(w http.ResponseWriter, serverName, serverDescription, clientName string, pending *PendingAuthRequest) error {
	state, err := pending.EncodeState()
	if err != nil {
		return err
	}
	if clientName == "" {
		clientName = pending.ClientID
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return approvalTemplate.Execute(w, approvalPage{
		ServerName:        serverName,
		ServerDescription: serverDescription,
		ClientName:        clientName,
		State:             state,
	})
}

// ParseApprovalForm reads the consent form submission of POST /authorize and
// returns the decoded pending request together with the approval cookie to
// set on the redirect response. Approval and redirect happen in this single
// hop; there is no intermediate approved-but-not-redirected state.
func ParseApprovalForm(r *http.Request, key []byte) (*PendingAuthRequest, *http.Cookie, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse approval form: %w", err)
	}

	state := r.PostFormValue("state")
	if state == "" {
		return nil, nil, fmt.Errorf("approval form has no state")
	}

	pending, err := DecodeState(state)
	if err != nil {
		return nil, nil, err
	}
	if pending.ClientID == "" {
		return nil, nil, fmt.Errorf("pending auth request has no client id")
	}

	cookie, err := ApprovalCookie(r, pending.ClientID, key)
	if err != nil {
		return nil, nil, err
	}
	return pending, cookie, nil
}
