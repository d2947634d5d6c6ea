package session

import (
	"sync"
	"testing"
)

func TestCredentialAuthorized(t *testing.T) {
	c := NewCredential("", "rt", "1001", "user@example.com", "Test User")
	if c.Authorized() {
		t.Error("Authorized() = true for empty access token")
	}

	c = NewCredential("at-1", "rt", "1001", "user@example.com", "Test User")
	if !c.Authorized() {
		t.Error("Authorized() = false for present access token")
	}
}

func TestSetAccessTokenLeavesRefreshTokenUntouched(t *testing.T) {
	c := NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")
	c.SetAccessToken("at-2")

	if c.AccessToken() != "at-2" {
		t.Errorf("AccessToken() = %v, want at-2", c.AccessToken())
	}
	if c.RefreshToken() != "rt-1" {
		t.Errorf("RefreshToken() = %v, want rt-1 (must be preserved)", c.RefreshToken())
	}
	if c.UserID() != "1001" || c.Email() != "user@example.com" || c.Name() != "Test User" {
		t.Error("identity metadata must be fixed at creation")
	}
}

func TestLastCreatedIDs(t *testing.T) {
	c := NewCredential("at", "", "1001", "user@example.com", "Test User")

	if c.LastDocumentID() != "" || c.LastSpreadsheetID() != "" {
		t.Error("fresh credential should have no last-created ids")
	}

	c.SetLastDocumentID("doc-1")
	c.SetLastSpreadsheetID("sheet-1")
	if c.LastDocumentID() != "doc-1" {
		t.Errorf("LastDocumentID() = %v, want doc-1", c.LastDocumentID())
	}
	if c.LastSpreadsheetID() != "sheet-1" {
		t.Errorf("LastSpreadsheetID() = %v, want sheet-1", c.LastSpreadsheetID())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCredential("at", "rt", "1001", "user@example.com", "Test User")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetAccessToken("at-new")
		}()
		go func() {
			defer wg.Done()
			_ = c.AccessToken()
		}()
	}
	wg.Wait()

	if c.AccessToken() != "at-new" {
		t.Errorf("AccessToken() = %v, want at-new", c.AccessToken())
	}
}
