package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/goerror"
)

type RegisterInput struct {
	Name     string `validate:"required,alphaspace,max=100"`
	Lastname string `validate:"required,alphaspace,max=100"`
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,password"`
}

type RegisterOutput struct {
	Email    string
	Name     string
	Lastname string
}

// Register creates a new account with an Active status. The email address is
// unique; a duplicate registration is rejected with a conflict.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "failed to validate input", "error", err)
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return nil, goerror.NewServer(err)
	}
	if err == nil {
		slog.WarnContext(ctx, "email already registered", "email", in.Email)
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Email:    in.Email,
		Name:     in.Name,
		Lastname: in.Lastname,
		Status:   entity.UserStatusActive,
	}
	if err := s.repoDB.CreateUser(ctx, user, string(passwordHash)); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "email already registered", "email", in.Email)
			return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
		}

		slog.ErrorContext(ctx, "failed to repo create user", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RegisterOutput{Email: user.Email, Name: user.Name, Lastname: user.Lastname}, nil
}
