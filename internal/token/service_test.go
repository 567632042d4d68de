package token

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-signing-key", "santasdraw", time.Hour)

	tok, err := svc.Generate("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.Issuer != "santasdraw" {
		t.Errorf("Issuer = %q, want santasdraw", claims.Issuer)
	}
}

func TestValidate_WrongKey(t *testing.T) {
	issuer := New("key-one", "santasdraw", time.Hour)
	verifier := New("key-two", "santasdraw", time.Hour)

	tok, err := issuer.Generate("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := verifier.Validate(tok); err == nil {
		t.Fatal("expected validation failure for token signed with another key")
	}
}

func TestValidate_Expired(t *testing.T) {
	svc := New("test-signing-key", "santasdraw", -time.Minute)

	tok, err := svc.Generate("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := svc.Validate(tok); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestValidate_Garbage(t *testing.T) {
	svc := New("test-signing-key", "santasdraw", time.Hour)

	if _, err := svc.Validate("not.a.token"); err == nil {
		t.Fatal("expected validation failure for malformed token")
	}
}
