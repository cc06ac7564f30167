package db

import (
	"context"

	"github.com/satriojati/otpgate/internal/auth/entity"
)

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, email, name, lastname, status, created_at
		FROM auth_users
		WHERE email = $1
	`

	var user entity.User
	err = s.conn.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.Name, &user.Lastname, &user.Status, &user.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) GetUserLoginInfo(ctx context.Context, email string) (_ *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT u.id, u.email, u.name, u.lastname, u.status, c.password
		FROM auth_users u
		JOIN auth_user_credentials c ON c.user_id = u.id
		WHERE u.email = $1
	`

	var info entity.UserLoginInfo
	err = s.conn.QueryRow(ctx, query, email).
		Scan(&info.ID, &info.Email, &info.Name, &info.Lastname, &info.Status, &info.Password)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &info, nil
}

func (s *DB) GetSessionByTokenID(ctx context.Context, tokenID string) (_ *entity.SessionUser, err error) {
	ctx, span := s.startSpan(ctx, "GetSessionByTokenID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT s.id, s.revoked, s.expires_at, u.id, u.email, u.name, u.lastname, u.status
		FROM auth_sessions s
		JOIN auth_users u ON u.id = s.user_id
		WHERE s.token_id = $1
	`

	var su entity.SessionUser
	err = s.conn.QueryRow(ctx, query, tokenID).
		Scan(&su.SessionID, &su.SessionRevoked, &su.SessionExpiresAt,
			&su.UserID, &su.UserEmail, &su.UserName, &su.UserLastname, &su.UserStatus)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &su, nil
}
