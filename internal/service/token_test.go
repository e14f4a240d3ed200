package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager_IssueVerifyRoundtrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	payload, ok := m.Verify(token)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if payload.Username != "alice" {
		t.Fatalf("expected username alice, got %q", payload.Username)
	}
}

func TestTokenManager_VerifyFailuresAreTotal(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	// Verify never errors out of the pipeline; every failure is ok=false.
	cases := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"garbage", func(t *testing.T) string {
			return "not.a.jwt"
		}},
		{"empty", func(t *testing.T) string {
			return ""
		}},
		{"wrong_secret", func(t *testing.T) string {
			other := NewTokenManager("other-secret", time.Hour)
			tok, err := other.Issue("alice")
			if err != nil {
				t.Fatalf("issue with other secret: %v", err)
			}
			return tok
		}},
		{"expired", func(t *testing.T) string {
			now := time.Now()
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
					IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				},
				Username: "alice",
			})
			signed, err := tok.SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("sign expired token: %v", err)
			}
			return signed
		}},
		{"none_algorithm", func(t *testing.T) string {
			tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				Username: "alice",
			})
			signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
			if err != nil {
				t.Fatalf("sign none token: %v", err)
			}
			return signed
		}},
		{"missing_username", func(t *testing.T) string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			})
			signed, err := tok.SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("sign anonymous token: %v", err)
			}
			return signed
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := m.Verify(tc.token(t)); ok {
				t.Fatal("expected verification failure")
			}
		})
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	if m.ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTokenTTL, m.ttl)
	}
}
