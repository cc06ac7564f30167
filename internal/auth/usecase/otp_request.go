package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/idempotency"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
)

type OtpRequestInput struct {
	Email   string `validate:"required,email,max=100"`
	Machine string `validate:"max=100"` // optional device fingerprint
}

// OtpRequest re-issues the code for a pending login. The response is the same
// generic message whether or not the email is registered; existence is never
// disclosed. A short idempotency lock absorbs duplicate submits, such as a
// double-clicked resend button.
func (s *Usecase) OtpRequest(ctx context.Context, in OtpRequestInput) error {
	ctx, span := s.startSpan(ctx, "OtpRequest")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.Machine = normalizeMachine(in.Machine)

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "failed to validate input", "error", err)
		return goerror.NewInvalidInput(err)
	}

	if err := s.otpReqLimit.Allow(ctx, in.Email+":"+in.Machine); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			slog.WarnContext(ctx, "otp requests rate limited", "email", in.Email)
			return goerror.NewBusiness("Too many OTP requests, try again later", goerror.CodeTooManyRequest)
		}

		slog.ErrorContext(ctx, "failed to check otp request rate limit", "error", err)
		return goerror.NewServer(err)
	}

	issue := func(ctx context.Context) error {
		user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "email not registered for otp request", "email", in.Email)
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
			return goerror.NewServer(err)
		}

		if !user.Status.IsActive() {
			slog.WarnContext(ctx, "user is not active for otp request", "user_id", user.ID, "status", user.Status.String())
			return nil
		}

		return s.issueOtpChallenge(ctx, user.ID, user.Email, user.Name, user.Lastname, in.Machine)
	}

	key := "otp_request:" + in.Email + ":" + in.Machine
	err := s.idemp.Exec(ctx, key, issue,
		idempotency.WithLockDuration(10*time.Second), idempotency.WithStateTTL(10*time.Second))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "duplicate otp request absorbed", "email", in.Email)
		return nil
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return err
	}

	// Idempotency tracking is best-effort, the request must not fail with it.
	slog.WarnContext(ctx, "idempotency tracker unavailable, proceeding", "error", err)
	return issue(ctx)
}
