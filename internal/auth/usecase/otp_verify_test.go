package usecase

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
)

func (f *fixture) loginAndGrabCode(t *testing.T, email, machine string) string {
	t.Helper()

	err := f.uc.Login(t.Context(), LoginInput{Email: email, Password: "Secret1", Machine: machine})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	ev := f.msgr.last()
	if ev == nil {
		t.Fatal("no otp event published")
	}
	return ev.Code
}

func TestOtpVerifyMintsToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	out, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    code,
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Token == "" {
		t.Fatal("no token returned")
	}

	claims, err := f.jwt.Verify(out.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != 1 || claims.UserEmail != "jane@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("token has no jti")
	}

	sess := f.repo.session(claims.ID)
	if sess == nil {
		t.Fatal("no session row for jti")
	}
	if sess.Revoked {
		t.Fatal("fresh session must not be revoked")
	}
	if got := sess.ExpiresAt.Sub(f.clock.Now()); got != 24*time.Hour {
		t.Fatalf("session ttl = %v", got)
	}
}

func TestOtpVerifyWrongCode(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    wrong,
		Machine: "laptop-01",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", gerr.StatusCode())
	}

	// A failed attempt must not burn the challenge.
	out, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    code,
		Machine: "laptop-01",
	})
	if err != nil {
		t.Fatalf("correct code after failed attempt: %v", err)
	}
	if out.Token == "" {
		t.Fatal("no token returned")
	}
}

func TestOtpVerifyReplay(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	in := OtpVerifyInput{Email: "jane@example.com", Code: code, Machine: "laptop-01"}
	if _, err := f.uc.OtpVerify(t.Context(), in); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	_, err := f.uc.OtpVerify(t.Context(), in)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusGone {
		t.Fatalf("replay: want 410, got %d", gerr.StatusCode())
	}
}

func TestOtpVerifyExpired(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	f.clock.advance(6 * time.Minute)

	in := OtpVerifyInput{Email: "jane@example.com", Code: code, Machine: "laptop-01"}
	_, err := f.uc.OtpVerify(t.Context(), in)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusGone {
		t.Fatalf("expired: want 410, got %d", gerr.StatusCode())
	}

	// Expiry consumes the challenge, the code cannot be retried.
	if ch := f.repo.challenge(1, "laptop-01"); ch == nil || !ch.Consumed {
		t.Fatal("expired challenge should be consumed")
	}
	_, err = f.uc.OtpVerify(t.Context(), in)
	gerr = asGoError(t, err)
	if gerr.StatusCode() != http.StatusGone {
		t.Fatalf("retry after expiry: want 410, got %d", gerr.StatusCode())
	}
}

func TestOtpVerifyWrongMachine(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    code,
		Machine: "phone-02",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("wrong machine: want 401, got %d", gerr.StatusCode())
	}
}

func TestOtpVerifyUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "ghost@example.com",
		Code:    "123456",
		Machine: "laptop-01",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("unknown email: want 401, got %d", gerr.StatusCode())
	}
}

func TestOtpVerifyRateLimited(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.otpVerifLimit.err = ratelimit.ErrLimited

	_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email:   "jane@example.com",
		Code:    "123456",
		Machine: "laptop-01",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", gerr.StatusCode())
	}
}

func TestOtpVerifyMalformedCode(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
			Email:   "jane@example.com",
			Code:    code,
			Machine: "laptop-01",
		})
		gerr := asGoError(t, err)
		if gerr.StatusCode() != http.StatusUnprocessableEntity {
			t.Fatalf("code %q: want 422, got %d", code, gerr.StatusCode())
		}
	}

	// Malformed attempts must not touch the challenge.
	if ch := f.repo.challenge(1, "laptop-01"); ch == nil || ch.Consumed {
		t.Fatal("challenge should still be live")
	}
}

// Exactly one of N concurrent verifications may win the token.
func TestOtpVerifyConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "laptop-01")

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
				Email:   "jane@example.com",
				Code:    code,
				Machine: "laptop-01",
			})
			results[i] = err
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		gerr := asGoError(t, err)
		if gerr.StatusCode() != http.StatusGone {
			t.Fatalf("loser should see 410, got %d", gerr.StatusCode())
		}
	}
	if winners != 1 {
		t.Fatalf("want exactly 1 winner, got %d", winners)
	}
}

func TestOtpVerifyWithoutMachine(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)
	code := f.loginAndGrabCode(t, "jane@example.com", "")

	out, err := f.uc.OtpVerify(t.Context(), OtpVerifyInput{
		Email: "jane@example.com",
		Code:  code,
	})
	if err != nil {
		t.Fatalf("verify without machine: %v", err)
	}
	if out.Token == "" {
		t.Fatal("no token minted")
	}
}
