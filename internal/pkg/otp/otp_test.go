package otp

import (
	"strings"
	"testing"
)

func TestCryptoDigits(t *testing.T) {
	gen := NewCrypto()

	t.Run("returns exactly n digits", func(t *testing.T) {
		for _, n := range []int{1, 6, 8, 32} {
			code, err := gen.Digits(n)
			if err != nil {
				t.Fatalf("Digits(%d) error = %v", n, err)
			}
			if len(code) != n {
				t.Fatalf("Digits(%d) length = %d, want %d", n, len(code), n)
			}
			if strings.Trim(code, "0123456789") != "" {
				t.Fatalf("Digits(%d) = %q, want digits only", n, code)
			}
		}
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			if _, err := gen.Digits(n); err == nil {
				t.Fatalf("Digits(%d) error = nil, want error", n)
			}
		}
	})

	t.Run("codes are not constant", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 50 {
			code, err := gen.Digits(6)
			if err != nil {
				t.Fatalf("Digits(6) error = %v", err)
			}
			seen[code] = true
		}
		if len(seen) < 2 {
			t.Fatalf("50 generated codes collapsed to %d distinct value(s)", len(seen))
		}
	})
}
