package auth

import (
	"testing"
	"time"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(Config{
		Secret: []byte("test-secret-change-me"),
		Issuer: "test",
		TTL:    time.Hour,
	})
}

func TestIssueAndValidateRoundtrip(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue("anon-abc")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.AnonymousID != "anon-abc" {
		t.Fatalf("expected anonymous id roundtrip, got %q", claims.AnonymousID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := newTestIssuer().Issue("anon-abc")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer(Config{Secret: []byte("different-secret"), Issuer: "test", TTL: time.Hour})
	if _, err := other.Validate(token); err == nil {
		t.Fatalf("expected validation failure with a different secret")
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	minted := NewTokenIssuer(Config{Secret: []byte("test-secret-change-me"), Issuer: "other", TTL: time.Hour})
	token, err := minted.Issue("anon-abc")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := newTestIssuer().Validate(token); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: []byte("test-secret-change-me"), Issuer: "test", TTL: -time.Minute})
	token, err := issuer.Issue("anon-abc")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Validate(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
