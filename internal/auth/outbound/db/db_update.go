package db

import (
	"context"
)

// RevokeSession marks the session behind tokenID as revoked. Unknown or
// already revoked sessions are left untouched, so the call is idempotent.
func (s *DB) RevokeSession(ctx context.Context, tokenID string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeSession")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE auth_sessions
		SET revoked = TRUE
		WHERE token_id = $1 AND revoked = FALSE
	`
	_, err = s.conn.Exec(ctx, query, tokenID)
	return s.mapError(err)
}
