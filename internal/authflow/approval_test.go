package authflow

import (
	"net/http/httptest"
	"strings"
	"testing"
)

var cookieKey = []byte("test-cookie-key")

func TestApprovalCookieRoundTrip(t *testing.T) {
	r := httptest.NewRequest("GET", "/authorize", nil)
	if ClientApproved(r, "abc", cookieKey) {
		t.Fatal("fresh browser must not be approved")
	}

	cookie, err := ApprovalCookie(r, "abc", cookieKey)
	if err != nil {
		t.Fatalf("ApprovalCookie() error: %v", err)
	}

	r2 := httptest.NewRequest("GET", "/authorize", nil)
	r2.AddCookie(cookie)
	if !ClientApproved(r2, "abc", cookieKey) {
		t.Error("approved client not recognized")
	}
	if ClientApproved(r2, "other", cookieKey) {
		t.Error("unapproved client recognized")
	}
}

func TestApprovalCookieAccumulates(t *testing.T) {
	r := httptest.NewRequest("GET", "/authorize", nil)
	first, err := ApprovalCookie(r, "abc", cookieKey)
	if err != nil {
		t.Fatalf("ApprovalCookie() error: %v", err)
	}

	r2 := httptest.NewRequest("GET", "/authorize", nil)
	r2.AddCookie(first)
	second, err := ApprovalCookie(r2, "def", cookieKey)
	if err != nil {
		t.Fatalf("ApprovalCookie() error: %v", err)
	}

	r3 := httptest.NewRequest("GET", "/authorize", nil)
	r3.AddCookie(second)
	for _, id := range []string{"abc", "def"} {
		if !ClientApproved(r3, id, cookieKey) {
			t.Errorf("client %q lost from cookie", id)
		}
	}
}

func TestApprovalCookieRejectsTampering(t *testing.T) {
	r := httptest.NewRequest("GET", "/authorize", nil)
	cookie, err := ApprovalCookie(r, "abc", cookieKey)
	if err != nil {
		t.Fatalf("ApprovalCookie() error: %v", err)
	}

	sig, payload, _ := strings.Cut(cookie.Value, ".")

	tampered := *cookie
	tampered.Value = strings.Repeat("0", len(sig)) + "." + payload
	r2 := httptest.NewRequest("GET", "/authorize", nil)
	r2.AddCookie(&tampered)
	if ClientApproved(r2, "abc", cookieKey) {
		t.Error("tampered signature accepted")
	}

	r3 := httptest.NewRequest("GET", "/authorize", nil)
	r3.AddCookie(cookie)
	if ClientApproved(r3, "abc", []byte("different-key")) {
		t.Error("cookie accepted under a different key")
	}
}

func TestParseApprovalForm(t *testing.T) {
	pending := &PendingAuthRequest{ClientID: "abc", RedirectURI: "https://client.example/cb"}
	state, err := pending.EncodeState()
	if err != nil {
		t.Fatalf("EncodeState() error: %v", err)
	}

	r := httptest.NewRequest("POST", "/authorize", strings.NewReader("state="+state))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, cookie, err := ParseApprovalForm(r, cookieKey)
	if err != nil {
		t.Fatalf("ParseApprovalForm() error: %v", err)
	}
	if got.ClientID != "abc" {
		t.Errorf("ClientID = %q, want abc", got.ClientID)
	}

	r2 := httptest.NewRequest("GET", "/authorize", nil)
	r2.AddCookie(cookie)
	if !ClientApproved(r2, "abc", cookieKey) {
		t.Error("returned cookie does not approve the client")
	}
}

func TestParseApprovalFormMissingState(t *testing.T) {
	r := httptest.NewRequest("POST", "/authorize", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, _, err := ParseApprovalForm(r, cookieKey); err == nil {
		t.Fatal("want an error for a missing state field")
	}
}
