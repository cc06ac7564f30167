package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestJWT(t *testing.T, clk *fakeClock) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "otpgate",
		Audiences: []string{"otpgate-api"},
		TTL:       15 * time.Minute,
		Clock:     clk,
	})
	if err != nil {
		t.Fatalf("NewHS512 error = %v", err)
	}
	return j
}

func TestNewHS512RejectsShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("too-short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("NewHS512 error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestSymmetricGenerateVerify(t *testing.T) {
	// The parser validates exp/nbf against real time, so tokens are issued
	// with a clock pinned to the current instant.
	j := newTestJWT(t, &fakeClock{now: time.Now()})

	t.Run("round trip keeps identity and token id", func(t *testing.T) {
		token, err := j.Generate(42, "ana@example.com", "tok-123")
		if err != nil {
			t.Fatalf("Generate error = %v", err)
		}

		claims, err := j.Verify(token)
		if err != nil {
			t.Fatalf("Verify error = %v", err)
		}
		if claims.UserID != 42 {
			t.Errorf("UserID = %d, want 42", claims.UserID)
		}
		if claims.UserEmail != "ana@example.com" {
			t.Errorf("UserEmail = %q, want ana@example.com", claims.UserEmail)
		}
		if claims.ID != "tok-123" {
			t.Errorf("jti = %q, want tok-123", claims.ID)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		past := newTestJWT(t, &fakeClock{now: time.Now().Add(-time.Hour)})

		token, err := past.Generate(42, "ana@example.com", "tok-456")
		if err != nil {
			t.Fatalf("Generate error = %v", err)
		}
		if _, err := past.Verify(token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("Verify expired error = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := newTestJWT(t, &fakeClock{now: time.Now()})
		other.secret = []byte(strings.Repeat("x", 64))

		token, err := other.Generate(42, "ana@example.com", "tok-999")
		if err != nil {
			t.Fatalf("Generate error = %v", err)
		}
		if _, err := j.Verify(token); err == nil {
			t.Fatal("Verify error = nil, want signature error")
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		if _, err := j.Verify("not.a.token"); err == nil {
			t.Fatal("Verify error = nil, want parse error")
		}
	})
}
