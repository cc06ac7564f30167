package usecase

import (
	"net/http"
	"testing"

	"github.com/satriojati/otpgate/internal/auth/entity"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Register(t.Context(), RegisterInput{
		Name:     "Jane",
		Lastname: "Roe",
		Email:    "  Jane.Roe@Example.COM ",
		Password: "Secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.Email != "jane.roe@example.com" {
		t.Fatalf("email not normalized: %q", out.Email)
	}
	if out.Name != "Jane" || out.Lastname != "Roe" {
		t.Fatalf("name fields not echoed: %q %q", out.Name, out.Lastname)
	}

	su, ok := f.repo.users["jane.roe@example.com"]
	if !ok {
		t.Fatal("user not stored")
	}
	if su.info.Name != "Jane" || su.info.Lastname != "Roe" {
		t.Fatalf("name fields not stored: %q %q", su.info.Name, su.info.Lastname)
	}
	if !su.info.Status.IsActive() {
		t.Fatalf("new user should be active, got %s", su.info.Status)
	}
	if su.info.Password == "Secret1" {
		t.Fatal("password stored in plaintext")
	}
	if !f.bcrypt.Verify(su.info.Password, "Secret1") {
		t.Fatal("stored hash does not match password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "jane@example.com", "Secret1", entity.UserStatusActive)

	_, err := f.uc.Register(t.Context(), RegisterInput{
		Name:     "Jane",
		Lastname: "Roe",
		Email:    "jane@example.com",
		Password: "AnotherSecret1",
	})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusConflict {
		t.Fatalf("want 409, got %d", gerr.StatusCode())
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Name: "Jane", Lastname: "Roe", Password: "Secret1"}},
		{"bad email", RegisterInput{Name: "Jane", Lastname: "Roe", Email: "nope", Password: "Secret1"}},
		{"short password", RegisterInput{Name: "Jane", Lastname: "Roe", Email: "jane@example.com", Password: "abc"}},
		{"missing lastname", RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "Secret1"}},
		{"numeric name", RegisterInput{Name: "Jane99", Lastname: "Roe", Email: "jane@example.com", Password: "Secret1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Register(t.Context(), tc.in)
			gerr := asGoError(t, err)
			if gerr.StatusCode() != http.StatusUnprocessableEntity {
				t.Fatalf("want 422, got %d", gerr.StatusCode())
			}
		})
	}
}
