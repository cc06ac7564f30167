package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
)

type ProtectedOutput struct {
	Message  string
	Email    string
	Name     string
	Lastname string
}

// Protected serves the authenticated-only greeting. The token signature is
// checked by the middleware; this re-checks the server-side session so a
// revoked or expired session is rejected even while the token itself is
// still within its validity window.
func (s *Usecase) Protected(ctx context.Context) (*ProtectedOutput, error) {
	ctx, span := s.startSpan(ctx, "Protected")
	defer span.End()

	claims := jwt.GetAuth(ctx)
	if claims == nil {
		slog.WarnContext(ctx, "missing auth claims in context")
		return nil, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
	}

	su, err := s.repoDB.GetSessionByTokenID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "session not found", "user_id", claims.UserID)
			return nil, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
		}

		slog.ErrorContext(ctx, "failed to repo get session", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if su.SessionRevoked || s.clock.Now().After(su.SessionExpiresAt) {
		slog.WarnContext(ctx, "session revoked or expired", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
	}

	if !su.UserStatus.IsActive() {
		slog.WarnContext(ctx, "user is not active", "user_id", su.UserID)
		return nil, goerror.NewBusiness("account is not active", goerror.CodeForbidden)
	}

	return &ProtectedOutput{
		Message:  "Hello, authenticated user!",
		Email:    su.UserEmail,
		Name:     su.UserName,
		Lastname: su.UserLastname,
	}, nil
}
