package authflow

import (
	"net/http"
	"strings"

	"github.com/kuchbhi/workspace-mcp/internal/server"
)

// RequireBearer guards the MCP endpoint: requests must carry a bearer token
// minted by the Issuer. The matching credential is placed on the request
// context for the tool handlers.
func RequireBearer(sc *server.ServerContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		cred, ok := sc.CredentialForToken(token)
		if !ok {
			writeUnauthorized(w, "unknown or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(server.WithCredential(r.Context(), cred)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token", error_description="`+description+`"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
