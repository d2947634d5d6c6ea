package authflow

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParsePendingAuthRequest(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/authorize?response_type=code&client_id=abc&redirect_uri=https%3A%2F%2Fclient.example%2Fcb&scope=email+profile&state=xyz&code_challenge=ch&code_challenge_method=S256",
		nil)

	got := ParsePendingAuthRequest(r)
	want := &PendingAuthRequest{
		ResponseType:        "code",
		ClientID:            "abc",
		RedirectURI:         "https://client.example/cb",
		Scope:               []string{"email", "profile"},
		State:               "xyz",
		CodeChallenge:       "ch",
		CodeChallengeMethod: "S256",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePendingAuthRequest() = %+v, want %+v", got, want)
	}
}

func TestStateRoundTrip(t *testing.T) {
	pending := &PendingAuthRequest{
		ResponseType: "code",
		ClientID:     "abc",
		RedirectURI:  "https://client.example/cb",
		Scope:        []string{"email"},
		State:        "client-state",
	}

	state, err := pending.EncodeState()
	if err != nil {
		t.Fatalf("EncodeState() error: %v", err)
	}

	decoded, err := DecodeState(state)
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	if !reflect.DeepEqual(decoded, pending) {
		t.Errorf("round trip = %+v, want %+v", decoded, pending)
	}
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	for _, state := range []string{"", "not base64!!", "bm90IGpzb24="} {
		if _, err := DecodeState(state); err == nil {
			t.Errorf("DecodeState(%q): want an error", state)
		}
	}
}
