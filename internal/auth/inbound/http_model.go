package inbound

import "net/http"

type RegisterRequest struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}

func (RegisterResponse) Message() string {
	return "Registration successful"
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Machine  string `json:"machine"`
}

type LoginResponse struct{}

func (LoginResponse) Message() string {
	return "OTP sent to your email"
}

type OtpRequestRequest struct {
	Email   string `json:"email"`
	Machine string `json:"machine"`
}

type OtpRequestResponse struct{}

func (OtpRequestResponse) Message() string {
	return "If an account with that email exists, we have sent a one-time code."
}

type OtpVerifyRequest struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Machine string `json:"machine"`
}

type OtpVerifyResponse struct {
	Token string `json:"token"`
}

func (OtpVerifyResponse) Message() string {
	return "OTP verified successfully"
}

type ProtectedResponse struct {
	Message  string `json:"message"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}
