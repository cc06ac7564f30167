package validator

import (
	"errors"
	"testing"
)

type registerPayload struct {
	Name     string `validate:"required,alphaspace"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

func TestV10ValidatorValidate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator error = %v", err)
	}

	t.Run("valid payload passes", func(t *testing.T) {
		err := v.Validate(registerPayload{
			Name:     "Ana Silva",
			Email:    "ana@example.com",
			Password: "Secret1",
		})
		if err != nil {
			t.Fatalf("Validate error = %v, want nil", err)
		}
	})

	t.Run("short password fails with field message", func(t *testing.T) {
		err := v.Validate(registerPayload{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "abc",
		})

		var verr V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate error = %v, want V10ValidationError", err)
		}
		if _, ok := verr.Values()["password"]; !ok {
			t.Fatalf("Values() = %v, want password key", verr.Values())
		}
	})

	t.Run("name with digits fails alphaspace", func(t *testing.T) {
		err := v.Validate(registerPayload{
			Name:     "Ana123",
			Email:    "ana@example.com",
			Password: "Secret1",
		})

		var verr V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate error = %v, want V10ValidationError", err)
		}
		if _, ok := verr.Values()["name"]; !ok {
			t.Fatalf("Values() = %v, want name key", verr.Values())
		}
	})

	t.Run("malformed email fails", func(t *testing.T) {
		err := v.Validate(registerPayload{
			Name:     "Ana",
			Email:    "not-an-email",
			Password: "Secret1",
		})
		if err == nil {
			t.Fatal("Validate error = nil, want validation error")
		}
	})
}
