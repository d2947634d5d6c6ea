package authflow

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/server"
)

func TestRequireBearer(t *testing.T) {
	sc := server.NewServerContext(t.Context(), google.NewExchanger("id", "secret"))
	sc.RegisterSession("good-token", testCredential())

	var gotEmail string
	handler := RequireBearer(sc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cred := sc.SessionCredential(r.Context()); cred != nil {
			gotEmail = cred.Email()
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
		{"case insensitive scheme", "bearer good-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate header")
			}
		})
	}

	if gotEmail != "user@example.com" {
		t.Errorf("credential email seen by handler = %q", gotEmail)
	}
}
