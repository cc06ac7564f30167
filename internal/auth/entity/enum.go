package entity

import "errors"

var (
	// ErrOtpMismatch indicates the submitted code does not match the active challenge.
	ErrOtpMismatch = errors.New("auth: otp code does not match")

	// ErrOtpExpired indicates the challenge outlived its time-to-live.
	ErrOtpExpired = errors.New("auth: otp code is expired")

	// ErrOtpConsumed indicates the challenge has already been used.
	ErrOtpConsumed = errors.New("auth: otp code is already used")
)

type UserStatus int16

const (
	// UserStatusUnknown is mean status is not known / not set.
	UserStatusUnknown UserStatus = 0

	// UserStatusActive mean user is allowed to use the app.
	UserStatusActive UserStatus = 1

	// UserStatusInactive mean user is not currently active (e.g., deactivated, closed).
	UserStatusInactive UserStatus = 2
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

func (us UserStatus) IsActive() bool {
	return us == UserStatusActive
}
