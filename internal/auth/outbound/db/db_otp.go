package db

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/satriojati/otpgate/internal/auth/entity"
)

// IssueOtpChallenge stores a new challenge for the (user, machine) pair,
// retiring whatever challenge was active for that pair in the same
// transaction. At most one live challenge exists per pair at a time.
func (s *DB) IssueOtpChallenge(ctx context.Context, in entity.OtpChallenge) (err error) {
	ctx, span := s.startSpan(ctx, "IssueOtpChallenge")
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

	const retire = `
		UPDATE auth_otp_challenges
		SET consumed = TRUE
		WHERE user_id = $1 AND machine = $2 AND consumed = FALSE
	`
	if _, err = tx.Exec(ctx, retire, in.UserID, in.Machine); err != nil {
		return s.mapError(err)
	}

	const insert = `
		INSERT INTO auth_otp_challenges (id, user_id, code_hash, machine, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.Exec(ctx, insert, in.ID, in.UserID, in.CodeHash, in.Machine, in.IssuedAt, in.ExpiresAt); err != nil {
		return s.mapError(err)
	}

	return tx.Commit(ctx)
}

// ConsumeOtpChallenge settles the latest challenge for the (user, machine)
// pair against the presented code hash. The row is locked for the duration,
// so concurrent verifications serialize and exactly one caller consumes a
// valid code; the rest see entity.ErrOtpConsumed. An expired challenge is
// retired on sight and reported as entity.ErrOtpExpired.
func (s *DB) ConsumeOtpChallenge(ctx context.Context, userID int64, machine, codeHash string, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOtpChallenge")
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

	const query = `
		SELECT id, code_hash, consumed, expires_at
		FROM auth_otp_challenges
		WHERE user_id = $1 AND machine = $2
		ORDER BY issued_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var (
		id        int64
		storedRaw string
		consumed  bool
		expiresAt time.Time
	)
	err = tx.QueryRow(ctx, query, userID, machine).Scan(&id, &storedRaw, &consumed, &expiresAt)
	if err != nil {
		return s.mapError(err)
	}

	if subtle.ConstantTimeCompare([]byte(storedRaw), []byte(codeHash)) != 1 {
		return entity.ErrOtpMismatch
	}

	if consumed {
		return entity.ErrOtpConsumed
	}

	const settle = `
		UPDATE auth_otp_challenges
		SET consumed = TRUE
		WHERE id = $1 AND consumed = FALSE
	`
	tag, err := tx.Exec(ctx, settle, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrOtpConsumed
	}

	if now.After(expiresAt) {
		// The challenge is retired either way, a stale code gets no retry.
		if err = tx.Commit(ctx); err != nil {
			return err
		}
		return entity.ErrOtpExpired
	}

	return tx.Commit(ctx)
}
