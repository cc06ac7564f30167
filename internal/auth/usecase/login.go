package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
)

type LoginInput struct {
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,max=72"`
	Machine  string `validate:"max=100"` // optional device fingerprint
}

// Login checks the password and, when it matches, dispatches a one-time code
// to the account's email. It never returns a token: the code must be verified
// first. Unknown emails, inactive accounts, and wrong passwords are all
// reported with the same message so callers cannot probe which emails exist.
func (s *Usecase) Login(ctx context.Context, in LoginInput) error {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.Machine = normalizeMachine(in.Machine)

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "failed to validate input", "error", err)
		return goerror.NewInvalidInput(err)
	}

	if err := s.loginLimit.Allow(ctx, in.Email); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			slog.WarnContext(ctx, "login attempts rate limited", "email", in.Email)
			return goerror.NewBusiness("Too many login attempts, try again later", goerror.CodeTooManyRequest)
		}

		slog.ErrorContext(ctx, "failed to check login rate limit", "error", err)
		return goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserLoginInfo(ctx, in.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "email not found", "email", in.Email)
			return goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
		}

		slog.ErrorContext(ctx, "failed to repo get user login info", "error", err)
		return goerror.NewServer(err)
	}

	if !user.Status.IsActive() {
		slog.WarnContext(ctx, "user is not active", "email", in.Email)
		return goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password mismatch", "email", in.Email)
		return goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}

	if err := s.issueOtpChallenge(ctx, user.ID, user.Email, user.Name, user.Lastname, in.Machine); err != nil {
		return err
	}

	return nil
}
