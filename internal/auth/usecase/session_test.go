package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
)

func (f *fixture) authedContext(t *testing.T) (context.Context, string) {
	t.Helper()

	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")
	out, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    code,
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	claims, err := f.jwt.Verify(out.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return jwt.SetAuth(t.Context(), claims), claims.ID
}

func TestProtected(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	ctx, _ := f.authedContext(t)

	out, err := f.uc.Protected(ctx)
	if err != nil {
		t.Fatalf("protected: %v", err)
	}
	if out.Message != "Hello, authenticated user!" {
		t.Fatalf("message = %q", out.Message)
	}
	if out.Email != "jane@example.com" {
		t.Fatalf("email = %q", out.Email)
	}
	if out.Name != "Test" || out.Lastname != "User" {
		t.Fatalf("name fields = %q %q", out.Name, out.Lastname)
	}
}

func TestProtectedWithoutClaims(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Protected(t.Context())
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", gerr.StatusCode())
	}
}

// A valid signature is not enough once the server-side session is gone.
func TestProtectedAfterLogout(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	ctx, _ := f.authedContext(t)

	if err := f.uc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := f.uc.Protected(ctx)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("want 401 after logout, got %d", gerr.StatusCode())
	}
}

func TestProtectedSessionExpired(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	ctx, _ := f.authedContext(t)

	f.clock.advance(25 * time.Hour)

	_, err := f.uc.Protected(ctx)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("want 401 for expired session, got %d", gerr.StatusCode())
	}
}

func TestProtectedInactiveUser(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	ctx, _ := f.authedContext(t)

	f.repo.mu.Lock()
	f.repo.users["jane@example.com"].info.Status = entity.UserStatusInactive
	f.repo.mu.Unlock()

	_, err := f.uc.Protected(ctx)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusForbidden {
		t.Fatalf("want 403 for inactive user, got %d", gerr.StatusCode())
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	ctx, tokenID := f.authedContext(t)

	if err := f.uc.Logout(ctx); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if sess := f.repo.session(tokenID); sess == nil || !sess.Revoked {
		t.Fatal("session should be revoked")
	}

	if err := f.uc.Logout(ctx); err != nil {
		t.Fatalf("second logout must succeed: %v", err)
	}
}

func TestLogoutWithoutClaims(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Logout(t.Context())
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", gerr.StatusCode())
	}
}
