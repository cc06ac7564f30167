package entity

import (
	"time"

	"github.com/satriojati/otpgate/internal/pkg/valueobject"
)

type User struct {
	ID        int64
	Email     string
	Name      string
	Lastname  string
	Status    UserStatus
	CreatedAt time.Time
}

type NewUser struct {
	ID       int64
	Email    string
	Name     string
	Lastname string
	Status   UserStatus
}

type UserLoginInfo struct {
	ID       int64
	Email    string
	Name     string
	Lastname string
	Status   UserStatus
	Password string // hashed
}

type OtpChallenge struct {
	ID        int64
	UserID    int64
	CodeHash  string
	Machine   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

type Session struct {
	ID        int64
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
	Revoked   bool
	Metadata  valueobject.JSONMap
}

// ---- //

type SessionUser struct {
	SessionID        int64
	SessionRevoked   bool
	SessionExpiresAt time.Time
	UserID           int64
	UserEmail        string
	UserName         string
	UserLastname     string
	UserStatus       UserStatus
}
