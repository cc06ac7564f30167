package usecase

import (
	"context"
	"log/slog"

	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
)

// Logout revokes the session behind the caller's token. Revoking an already
// revoked or missing session is a no-op, so repeated logouts succeed.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	claims := jwt.GetAuth(ctx)
	if claims == nil {
		slog.WarnContext(ctx, "missing auth claims in context")
		return goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.RevokeSession(ctx, claims.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke session", "user_id", claims.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
