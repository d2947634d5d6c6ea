// Package relay implements the token refresh guard applied to every
// outbound Google API call.
//
// A guarded call is attempted with the session's current access token. On a
// 401 or 403 with a refresh token present, the guard performs exactly one
// refresh and replays the request exactly once with the new token; the
// replay's response is final. Every other failure is relayed verbatim with
// no refresh attempt.
package relay
