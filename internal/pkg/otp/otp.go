package otp

import (
	"crypto/rand"
	"fmt"
)

// Generator defines the contract for producing one-time codes.
type Generator interface {
	// Digits returns a numeric code with exactly n digits.
	Digits(n int) (string, error)
}

// Crypto implements Generator on top of crypto/rand.
type Crypto struct{}

// NewCrypto constructs a Crypto generator.
func NewCrypto() *Crypto {
	return &Crypto{}
}

// Digits returns a numeric code with exactly n digits. Leading zeros are
// allowed, so "004213" is a valid 6-digit code.
func (*Crypto) Digits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("pkgotp: digit count must be positive, got %d", n)
	}

	code := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(code) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("pkgotp: read random bytes: %w", err)
		}

		for _, b := range buf {
			// Reject bytes >= 250 so b%10 stays uniform over 0..9.
			if b >= 250 {
				continue
			}
			code = append(code, '0'+b%10)
			if len(code) == n {
				break
			}
		}
	}

	return string(code), nil
}
