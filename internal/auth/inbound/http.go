package inbound

import (
	"context"

	"github.com/satriojati/otpgate/internal/auth/usecase"
	"github.com/satriojati/otpgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) error

	OtpRequest(ctx context.Context, in usecase.OtpRequestInput) error
	OtpVerify(ctx context.Context, in usecase.OtpVerifyInput) (*usecase.OtpVerifyOutput, error)

	Protected(ctx context.Context) (*usecase.ProtectedOutput, error)
	Logout(ctx context.Context) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Account & Login
	r.POST("/users/register", end.Register)
	r.POST("/users/login", end.Login)
	r.POST("/users/logout", end.Logout) // need authenticated

	// OTP Challenge
	r.POST("/otp/request", end.OtpRequest)
	r.POST("/otp/verify", end.OtpVerify)

	// Authenticated Resources
	r.GET("/users/protected", end.Protected)
}
