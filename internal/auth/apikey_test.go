package auth

import (
	"testing"
	"time"
)

func TestAttachTokenStore_IssueAndValidate(t *testing.T) {
	store := NewAttachTokenStore()

	plaintext, token, err := store.Issue("sess1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token.SessionID != "sess1" {
		t.Fatalf("expected session sess1, got %q", token.SessionID)
	}

	sessionID, err := store.Validate(plaintext)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sessionID != "sess1" {
		t.Fatalf("expected sess1, got %q", sessionID)
	}
}

func TestAttachTokenStore_ValidateUnknownToken(t *testing.T) {
	store := NewAttachTokenStore()

	if _, err := store.Validate(AttachTokenPrefix + "deadbeef"); err != ErrAttachTokenNotFound {
		t.Fatalf("expected ErrAttachTokenNotFound, got %v", err)
	}
}

func TestAttachTokenStore_ValidateExpiredToken(t *testing.T) {
	store := NewAttachTokenStore()

	plaintext, _, err := store.Issue("sess1", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := store.Validate(plaintext); err != ErrAttachTokenExpired {
		t.Fatalf("expected ErrAttachTokenExpired, got %v", err)
	}
}

func TestAttachTokenStore_Revoke(t *testing.T) {
	store := NewAttachTokenStore()

	plaintext, token, err := store.Issue("sess1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := store.Revoke(token.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if _, err := store.Validate(plaintext); err != ErrAttachTokenRevoked {
		t.Fatalf("expected ErrAttachTokenRevoked, got %v", err)
	}
}

func TestAttachTokenStore_RevokeSession(t *testing.T) {
	store := NewAttachTokenStore()

	plaintextA, _, err := store.Issue("sess1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	plaintextB, _, err := store.Issue("sess1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	plaintextOther, _, err := store.Issue("sess2", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	store.RevokeSession("sess1")

	if _, err := store.Validate(plaintextA); err != ErrAttachTokenRevoked {
		t.Fatalf("expected ErrAttachTokenRevoked for token A, got %v", err)
	}
	if _, err := store.Validate(plaintextB); err != ErrAttachTokenRevoked {
		t.Fatalf("expected ErrAttachTokenRevoked for token B, got %v", err)
	}
	if _, err := store.Validate(plaintextOther); err != nil {
		t.Fatalf("expected sess2 token to remain valid, got %v", err)
	}
}

func TestAttachTokenStore_List(t *testing.T) {
	store := NewAttachTokenStore()

	_, token, err := store.Issue("sess1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tokens := store.List("sess1")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].ID != token.ID {
		t.Fatalf("expected token id %q, got %q", token.ID, tokens[0].ID)
	}
	if tokens[0].KeyHash != "" {
		t.Fatalf("expected hash to not be exposed via List")
	}
}
