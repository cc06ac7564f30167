package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/satriojati/otpgate/internal/pkg/mail"
	"github.com/sethvargo/go-retry"
)

type ConsumeOtpIssuedInput struct {
	UserID    int64     `validate:"required,gt=0"`
	Email     string    `validate:"required,email"`
	Name      string    `validate:"required,max=100"`
	Lastname  string    `validate:"max=100"`
	Code      string    `validate:"required,len=6,numeric"`
	ExpiresAt time.Time `validate:"required"`
}

// ConsumeOtpIssued emails the one-time code to its owner. Delivery is retried
// with backoff; a message that still fails is handed back to the broker for
// redelivery. Malformed payloads are dropped, retrying cannot fix them.
func (s *Usecase) ConsumeOtpIssued(ctx context.Context, in ConsumeOtpIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	ttl := in.ExpiresAt.Sub(s.clock.Now()).Round(time.Minute)
	if ttl <= 0 {
		slog.WarnContext(ctx, "otp already expired, skipping email", "user_id", in.UserID)
		return nil
	}

	msg := mail.Message{
		To:      []string{in.Email},
		Subject: "Your one-time login code",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour OTP code is: %s. It expires in %d minutes.\n\nIf you did not try to sign in, you can ignore this email.",
			in.Name, in.Code, int(ttl.Minutes()),
		),
	}

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(3, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to send otp email, will retry", "user_id", in.UserID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
