package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
	"github.com/satriojati/otpgate/internal/pkg/valueobject"
)

type OtpVerifyInput struct {
	Email   string `validate:"required,email,max=100"`
	Code    string `validate:"required,len=6,numeric"`
	Machine string `validate:"max=100"` // optional device fingerprint
}

type OtpVerifyOutput struct {
	Token string
}

// OtpVerify consumes the active challenge for the (email, machine) pair and,
// on a match, mints a signed token backed by a server-side session. A code
// verifies at most once: the winner of a concurrent race gets the token and
// every other caller sees the challenge as already consumed. Expired codes
// are consumed on sight so they cannot be retried.
func (s *Usecase) OtpVerify(ctx context.Context, in OtpVerifyInput) (*OtpVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OtpVerify")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.Machine = normalizeMachine(in.Machine)

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "failed to validate input", "error", err)
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.otpVerifLimit.Allow(ctx, in.Email); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			slog.WarnContext(ctx, "otp verifications rate limited", "email", in.Email)
			return nil, goerror.NewBusiness("Too many verification attempts, try again later", goerror.CodeTooManyRequest)
		}

		slog.ErrorContext(ctx, "failed to check otp verify rate limit", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "email not found for otp verify", "email", in.Email)
			return nil, goerror.NewBusiness("invalid or unknown OTP", goerror.CodeUnauthorized)
		}

		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if err := s.repoDB.ConsumeOtpChallenge(ctx, user.ID, in.Machine, string(codeHash), now); err != nil {
		switch {
		case errors.Is(err, goerror.ErrNotFound), errors.Is(err, entity.ErrOtpMismatch):
			slog.WarnContext(ctx, "otp code mismatch or missing", "user_id", user.ID)
			return nil, goerror.NewBusiness("invalid or unknown OTP", goerror.CodeUnauthorized)
		case errors.Is(err, entity.ErrOtpExpired):
			slog.WarnContext(ctx, "otp code expired", "user_id", user.ID)
			return nil, goerror.NewBusiness("OTP has expired", goerror.CodeGone)
		case errors.Is(err, entity.ErrOtpConsumed):
			slog.WarnContext(ctx, "otp code already used", "user_id", user.ID)
			return nil, goerror.NewBusiness("OTP has already been used", goerror.CodeGone)
		}

		slog.ErrorContext(ctx, "failed to repo consume otp challenge", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	tokenID := s.uuid.Generate()
	token, err := s.jwt.Generate(user.ID, user.Email, tokenID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	session := entity.Session{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		TokenID:   tokenID,
		ExpiresAt: now.Add(s.cfg.GetHour("modules.auth.session_ttl_hours")),
		Metadata:  valueobject.JSONMap{"machine": in.Machine},
	}
	if err := s.repoDB.CreateSession(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &OtpVerifyOutput{Token: token}, nil
}
