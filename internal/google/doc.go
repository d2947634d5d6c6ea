// Package google talks to Google's identity endpoints.
//
// It owns the upstream side of the OAuth lifecycle: building the
// authorization URL, exchanging authorization codes and refresh tokens at
// the token endpoint, and fetching the user's basic profile. Upstream
// failures are returned verbatim (status and body) so callers can surface
// them without translation; retry policy lives one level up, in the relay
// guard.
package google
