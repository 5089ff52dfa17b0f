package auth

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer([]byte(strings.Repeat("k", 32)), "gamenight")
	issuer.Now = func() time.Time { return now }

	tok, err := issuer.Issue("user-1", "alice", true, "sess-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID() != "user-1" || claims.SessionID() != "sess-1" || claims.Username != "alice" || !claims.Admin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer([]byte(strings.Repeat("k", 32)), "gamenight")
	issuer.Now = func() time.Time { return now }

	tok, err := issuer.Issue("user-1", "alice", false, "sess-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.Now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := issuer.Parse(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	a := NewTokenIssuer([]byte(strings.Repeat("a", 32)), "gamenight")
	b := NewTokenIssuer([]byte(strings.Repeat("b", 32)), "gamenight")

	tok, err := a.Issue("user-1", "alice", false, "sess-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatalf("expected signature failure")
	}
	if _, err := a.Parse(tok + "x"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := BearerToken(req); ok {
		t.Fatalf("expected no token without header")
	}

	req.Header.Set("Authorization", "bearer abc.def")
	tok, ok := BearerToken(req)
	if !ok || tok != "abc.def" {
		t.Fatalf("unexpected token: %q %v", tok, ok)
	}

	req.Header.Set("Authorization", "Basic Zm9v")
	if _, ok := BearerToken(req); ok {
		t.Fatalf("expected basic auth to be ignored")
	}
}
