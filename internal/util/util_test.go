package util

import (
	"strings"
	"testing"
	"time"
)

// TestParseJWTRoundTrip verifies a provider-style token is accepted.
func TestParseJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("0b7c3f1e-7d42-4b8a-9a55-0c5d0d9e1f10", "awa@example.ci", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID() != "0b7c3f1e-7d42-4b8a-9a55-0c5d0d9e1f10" || claims.Email != "awa@example.ci" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

// TestParseJWTRejects verifies bad signatures and expired tokens fail.
func TestParseJWTRejects(t *testing.T) {
	token, _ := GenerateJWT("u1", "a@b.c", "secret", time.Hour)
	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatal("wrong secret accepted")
	}
	expired, _ := GenerateJWT("u1", "a@b.c", "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := ParseJWT("not-a-token", "secret"); err == nil {
		t.Fatal("garbage accepted")
	}
}

// TestValidateMimeType verifies YAML text passes and binary content is refused.
func TestValidateMimeType(t *testing.T) {
	if _, err := ValidateMimeType(strings.NewReader("questions:\n  - id: q1\n"), TextUploadTypes); err != nil {
		t.Fatalf("yaml rejected: %v", err)
	}
	if _, err := ValidateMimeType(strings.NewReader("\x89PNG\r\n\x1a\n\x00\x00"), TextUploadTypes); err == nil {
		t.Fatal("png accepted")
	}
}

// TestSplitList verifies blank entries are dropped.
func TestSplitList(t *testing.T) {
	got := SplitList(" anglais, ,logique,")
	if len(got) != 2 || got[0] != "anglais" || got[1] != "logique" {
		t.Fatalf("SplitList = %v", got)
	}
	if IntQuery("x", 7) != 7 || IntQuery(" 3 ", 7) != 3 {
		t.Fatal("IntQuery fallback broken")
	}
}
