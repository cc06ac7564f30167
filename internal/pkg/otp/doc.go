// Package otp generates one-time numeric codes for email challenges.
//
// Codes come from crypto/rand with rejection sampling so every digit is
// uniformly distributed. Callers hash codes before persisting them and enforce
// expiry and single use themselves.
package otp
