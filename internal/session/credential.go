package session

import (
	"sync"
)

// Credential is the per-session record created at callback time from the
// first token exchange. The access token is the only field mutated after
// creation (by a successful refresh); identity metadata is fixed at first
// authorization. The record dies with the session; there is no persistence.
type Credential struct {
	mu sync.RWMutex

	accessToken  string
	refreshToken string
	userID       string
	email        string
	name         string

	// Identifiers produced by one tool step, used as the implicit default
	// input to later steps within the same session.
	lastDocumentID    string
	lastSpreadsheetID string

	// callMu serializes guarded calls within one session so two concurrent
	// invocations cannot both trigger a refresh.
	callMu sync.Mutex
}

// NewCredential creates a session credential from the first token pair and
// the profile fetched with it. refreshToken may be empty if the upstream
// did not grant offline access.
func NewCredential(accessToken, refreshToken, userID, email, name string) *Credential {
	return &Credential{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		userID:       userID,
		email:        email,
		name:         name,
	}
}

// Authorized reports whether the session holds an access token. Guarded
// calls must short-circuit with a "needs authorization" response when false.
func (c *Credential) Authorized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// AccessToken returns the current access token.
func (c *Credential) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// SetAccessToken overwrites the access token after a successful refresh.
// The refresh token is deliberately left untouched.
func (c *Credential) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

// RefreshToken returns the long-lived refresh token, or "" if offline
// access was not granted.
func (c *Credential) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}

// UserID returns the provider's user id.
func (c *Credential) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Email returns the user's email.
func (c *Credential) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// Name returns the user's display name.
func (c *Credential) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// LastDocumentID returns the id of the most recently created document in
// this session, or "" if none was created.
func (c *Credential) LastDocumentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastDocumentID
}

// SetLastDocumentID records a created document id as the implicit default
// for later steps.
func (c *Credential) SetLastDocumentID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastDocumentID = id
}

// LastSpreadsheetID returns the id of the most recently created spreadsheet
// in this session, or "" if none was created.
func (c *Credential) LastSpreadsheetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSpreadsheetID
}

// SetLastSpreadsheetID records a created spreadsheet id as the implicit
// default for later steps.
func (c *Credential) SetLastSpreadsheetID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSpreadsheetID = id
}

// LockForCall serializes guarded calls for this session. Held for the whole
// attempt-refresh-replay sequence.
func (c *Credential) LockForCall() {
	c.callMu.Lock()
}

// UnlockAfterCall releases the guarded-call lock.
func (c *Credential) UnlockAfterCall() {
	c.callMu.Unlock()
}
