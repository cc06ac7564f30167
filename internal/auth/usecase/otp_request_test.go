package usecase

import (
	"net/http"
	"testing"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/idempotency"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
)

func TestOtpRequestReissuesCode(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	err := f.uc.OtpRequest(t.Context(), OtpRequestInput{
		Email:   "jane@example.com",
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("otp request: %v", err)
	}
	if f.msgr.count() != 1 {
		t.Fatalf("want 1 event, got %d", f.msgr.count())
	}
	if f.repo.challenge(1, "laptop-01") == nil {
		t.Fatal("no challenge stored")
	}
}

// The endpoint must answer identically whether or not the email exists.
func TestOtpRequestUnknownEmailSilent(t *testing.T) {
	f := newFixture(t)

	err := f.uc.OtpRequest(t.Context(), OtpRequestInput{
		Email:   "ghost@example.com",
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if f.msgr.count() != 0 {
		t.Fatal("no event should be published for unknown email")
	}
}

func TestOtpRequestInactiveUserSilent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "inactive@example.com", "Secret1", entity.UserStatusInactive)

	err := f.uc.OtpRequest(t.Context(), OtpRequestInput{
		Email:   "inactive@example.com",
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("inactive user must not error: %v", err)
	}
	if f.msgr.count() != 0 {
		t.Fatal("no event should be published for inactive user")
	}
}

func TestOtpRequestRateLimited(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.otpReqLimit.err = ratelimit.ErrLimited

	err := f.uc.OtpRequest(t.Context(), OtpRequestInput{
		Email:   "jane@example.com",
		Machine: "laptop-01",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", gerr.StatusCode())
	}
}

// The rate limit key is per (email, machine), two devices are independent.
func TestOtpRequestLimiterKeyIncludesMachine(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	if err := f.uc.OtpRequest(t.Context(), OtpRequestInput{Email: "jane@example.com", Machine: "laptop-01"}); err != nil {
		t.Fatalf("otp request: %v", err)
	}
	if err := f.uc.OtpRequest(t.Context(), OtpRequestInput{Email: "jane@example.com", Machine: "phone-02"}); err != nil {
		t.Fatalf("otp request: %v", err)
	}

	if len(f.otpReqLimit.calls) != 2 || f.otpReqLimit.calls[0] == f.otpReqLimit.calls[1] {
		t.Fatalf("limiter keys should differ per machine: %v", f.otpReqLimit.calls)
	}
}

func TestOtpRequestDuplicateAbsorbed(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.idemp.state = idempotency.StateInProgress

	err := f.uc.OtpRequest(t.Context(), OtpRequestInput{
		Email:   "jane@example.com",
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("duplicate request must not error: %v", err)
	}
	if f.msgr.count() != 0 {
		t.Fatal("duplicate request must not dispatch another code")
	}
}

func TestOtpRequestWithoutMachine(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	if err := f.uc.OtpRequest(t.Context(), OtpRequestInput{Email: "jane@example.com"}); err != nil {
		t.Fatalf("otp request without machine: %v", err)
	}
	if f.repo.challenge(1, "") == nil {
		t.Fatal("no challenge stored for the empty fingerprint")
	}
}
