package usecase

import (
	"net/http"
	"testing"
	"time"
	"unicode"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
)

func TestLoginDispatchesOtp(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	err := f.uc.Login(t.Context(), LoginInput{
		Email:    "Jane@Example.com",
		Password: "Secret1",
		Machine:  "laptop-01",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ev := f.msgr.last()
	if ev == nil {
		t.Fatal("no otp event published")
	}
	if ev.Email != "jane@example.com" {
		t.Fatalf("event email = %q", ev.Email)
	}
	if len(ev.Code) != 6 {
		t.Fatalf("code length = %d", len(ev.Code))
	}
	for _, r := range ev.Code {
		if !unicode.IsDigit(r) {
			t.Fatalf("code %q contains non-digit", ev.Code)
		}
	}

	ch := f.repo.challenge(1, "laptop-01")
	if ch == nil {
		t.Fatal("no challenge stored")
	}
	if ch.Consumed {
		t.Fatal("fresh challenge must not be consumed")
	}
	if ch.CodeHash == ev.Code {
		t.Fatal("challenge stores the plaintext code")
	}
	wantHash, err := f.hmac.Hash(ev.Code)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	if ch.CodeHash != string(wantHash) {
		t.Fatal("stored hash does not match dispatched code")
	}
	if got := ch.ExpiresAt.Sub(ch.IssuedAt); got != 5*time.Minute {
		t.Fatalf("challenge ttl = %v", got)
	}
}

// Unknown emails, wrong passwords, and inactive accounts must be
// indistinguishable to the caller.
func TestLoginAntiEnumeration(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.addUser(t, 2, "inactive@example.com", "Secret1", entity.UserStatusInactive)

	cases := []struct {
		name string
		in   LoginInput
	}{
		{"unknown email", LoginInput{Email: "ghost@example.com", Password: "Secret1", Machine: "m"}},
		{"wrong password", LoginInput{Email: "jane@example.com", Password: "WrongSecret1", Machine: "m"}},
		{"inactive account", LoginInput{Email: "inactive@example.com", Password: "Secret1", Machine: "m"}},
	}

	var msgs []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.uc.Login(t.Context(), tc.in)
			gerr := asGoError(t, err)
			if gerr.StatusCode() != http.StatusUnauthorized {
				t.Fatalf("want 401, got %d", gerr.StatusCode())
			}
			msgs = append(msgs, gerr.Msg())
		})
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i] != msgs[0] {
			t.Fatalf("messages differ: %q vs %q", msgs[0], msgs[i])
		}
	}
	if f.msgr.count() != 0 {
		t.Fatal("no otp should be dispatched on failed login")
	}
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.loginLimit.err = ratelimit.ErrLimited

	err := f.uc.Login(t.Context(), LoginInput{
		Email:    "jane@example.com",
		Password: "Secret1",
		Machine:  "laptop-01",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", gerr.StatusCode())
	}
	if f.msgr.count() != 0 {
		t.Fatal("no otp should be dispatched when rate limited")
	}
}

func TestLoginNewRequestReplacesChallenge(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	in := LoginInput{Email: "jane@example.com", Password: "Secret1", Machine: "laptop-01"}
	if err := f.uc.Login(t.Context(), in); err != nil {
		t.Fatalf("first login: %v", err)
	}
	first := f.msgr.last().Code

	if err := f.uc.Login(t.Context(), in); err != nil {
		t.Fatalf("second login: %v", err)
	}
	second := f.msgr.last().Code
	if first == second {
		t.Skip("generated codes collided")
	}

	// Only the latest code may verify.
	secondHash, _ := f.hmac.Hash(second)
	ch := f.repo.challenge(1, "laptop-01")
	if ch.CodeHash != string(secondHash) {
		t.Fatal("latest challenge does not carry the latest code")
	}
	firstHash, _ := f.hmac.Hash(first)
	if ch.CodeHash == string(firstHash) {
		t.Fatal("old challenge still active after re-login")
	}
}

func TestLoginPublishFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.msgr.err = errTest

	err := f.uc.Login(t.Context(), LoginInput{
		Email:    "jane@example.com",
		Password: "Secret1",
		Machine:  "laptop-01",
	})
	if err != nil {
		t.Fatalf("login should survive a publish failure: %v", err)
	}
	if f.repo.challenge(1, "laptop-01") == nil {
		t.Fatal("challenge should still be stored")
	}
}

// The device fingerprint is optional; a login without one scopes the
// challenge to the empty fingerprint.
func TestLoginWithoutMachine(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	err := f.uc.Login(t.Context(), LoginInput{
		Email:    "jane@example.com",
		Password: "Secret1",
	})
	if err != nil {
		t.Fatalf("login without machine: %v", err)
	}

	if f.repo.challenge(1, "") == nil {
		t.Fatal("no challenge stored for the empty fingerprint")
	}
	if f.msgr.count() != 1 {
		t.Fatalf("events = %d, want 1", f.msgr.count())
	}
}
