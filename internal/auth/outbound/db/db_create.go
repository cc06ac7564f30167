package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/satriojati/otpgate/internal/auth/entity"
)

// CreateUser inserts the account and its credential row in one transaction.
func (s *DB) CreateUser(ctx context.Context, user entity.NewUser, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	const insertUser = `
		INSERT INTO auth_users (id, email, name, lastname, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err = tx.Exec(ctx, insertUser, user.ID, user.Email, user.Name, user.Lastname, user.Status); err != nil {
		return s.mapError(err)
	}

	const insertCredential = `
		INSERT INTO auth_user_credentials (user_id, password)
		VALUES ($1, $2)
	`
	if _, err = tx.Exec(ctx, insertCredential, user.ID, hash); err != nil {
		return s.mapError(err)
	}

	return tx.Commit(ctx)
}

func (s *DB) CreateSession(ctx context.Context, in entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSession")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO auth_sessions (id, user_id, token_id, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.conn.Exec(ctx, query, in.ID, in.UserID, in.TokenID, in.ExpiresAt, in.Metadata)
	return s.mapError(err)
}
