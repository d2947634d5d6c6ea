package google

import (
	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	sheets "google.golang.org/api/sheets/v4"
)

// Default Google endpoints. The exchanger and profile fetch allow overriding
// these for tests.
const (
	DefaultTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// DefaultScopes returns the scope set requested on every authorization.
// Offline access plus forced consent (see AuthCodeURL) guarantee Google
// issues a refresh token on first authorization.
func DefaultScopes() []string {
	return []string{
		"email",
		"profile",
		gmail.GmailSendScope,
		gmail.GmailReadonlyScope,
		drive.DriveMetadataReadonlyScope,
		drive.DriveFileScope,
		docs.DocumentsScope,
		sheets.SpreadsheetsScope,
	}
}

// AuthCodeURL builds the Google authorization URL for the front door
// redirect. access_type=offline and prompt=consent are always requested so
// the callback exchange yields a refresh token even for returning users.
func AuthCodeURL(clientID, redirectURI, state string, scopes []string) string {
	conf := &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2google.Endpoint,
		RedirectURL: redirectURI,
		Scopes:      scopes,
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}
