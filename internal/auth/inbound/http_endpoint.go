package inbound

import (
	"github.com/satriojati/otpgate/internal/auth/usecase"
	"github.com/satriojati/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the two-step login workflow.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new account.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		Email:    resp.Email,
		Name:     resp.Name,
		Lastname: resp.Lastname,
	}, nil
}

// Login validates credentials and dispatches an OTP. It never returns a token.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Machine:  req.Machine,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{}, nil
}

// OtpRequest re-issues the OTP for a pending login.
func (h *HTTPEndpoint) OtpRequest(r *router.Request) (any, error) {
	var req OtpRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.OtpRequest(r.Context(), usecase.OtpRequestInput{
		Email:   req.Email,
		Machine: req.Machine,
	})
	if err != nil {
		return nil, err
	}

	return OtpRequestResponse{}, nil
}

// OtpVerify consumes the OTP and returns the access token.
func (h *HTTPEndpoint) OtpVerify(r *router.Request) (any, error) {
	var req OtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OtpVerify(r.Context(), usecase.OtpVerifyInput{
		Email:   req.Email,
		Code:    req.Code,
		Machine: req.Machine,
	})
	if err != nil {
		return nil, err
	}

	return OtpVerifyResponse{Token: resp.Token}, nil
}

// Protected returns the greeting for an authenticated session.
func (h *HTTPEndpoint) Protected(r *router.Request) (any, error) {
	resp, err := h.uc.Protected(r.Context())
	if err != nil {
		return nil, err
	}

	return ProtectedResponse{
		Message:  resp.Message,
		Email:    resp.Email,
		Name:     resp.Name,
		Lastname: resp.Lastname,
	}, nil
}

// Logout revokes the caller's session.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}

	return nil, nil
}
