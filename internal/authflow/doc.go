// Package authflow implements the authorization front door.
//
// MCP clients arrive at GET /authorize, approve the server on a consent
// dialog (or skip it on a returning browser via a signed cookie), and are
// sent to Google's consent screen with the original request round-tripped
// as the state parameter. GET /callback exchanges Google's code for tokens,
// binds them to a session credential, and hands the client a one-time
// authorization code. POST /token turns that code into the bearer token
// presented on the MCP endpoint.
package authflow
