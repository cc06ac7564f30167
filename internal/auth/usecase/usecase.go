package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/clock"
	"github.com/satriojati/otpgate/internal/pkg/config"
	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/hash"
	"github.com/satriojati/otpgate/internal/pkg/idempotency"
	"github.com/satriojati/otpgate/internal/pkg/instrument"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
	"github.com/satriojati/otpgate/internal/pkg/otp"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
	"github.com/satriojati/otpgate/internal/pkg/uid"
	"github.com/satriojati/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// maxMachineLength caps the stored device fingerprint.
const maxMachineLength = 100

// otpCodeLength is fixed; the verify gate and the issue path must agree.
const otpCodeLength = 6

type OtpIssuedEvent struct {
	UserID    int64
	Email     string
	Name      string
	Lastname  string
	Code      string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishOtpIssued(ctx context.Context, msg OtpIssuedEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)
	GetSessionByTokenID(ctx context.Context, tokenID string) (*entity.SessionUser, error)

	CreateUser(ctx context.Context, user entity.NewUser, hash string) error
	CreateSession(ctx context.Context, in entity.Session) error

	IssueOtpChallenge(ctx context.Context, in entity.OtpChallenge) error
	ConsumeOtpChallenge(ctx context.Context, userID int64, machine, codeHash string, now time.Time) error

	RevokeSession(ctx context.Context, tokenID string) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	codes         otp.Generator
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	loginLimit    ratelimit.Limiter
	otpReqLimit   ratelimit.Limiter
	otpVerifLimit ratelimit.Limiter
}

type Dependency struct {
	RepoDB          repoDB
	RepoMessaging   repoMessaging
	Idempotency     idempotency.Idempotency
	Validator       validator.Validator
	Config          config.Config
	HMAC            hash.Hash
	Bcrypt          hash.Hash
	UID             uid.NumberID
	UUID            uid.StringID
	Codes           otp.Generator
	Clock           clock.Clocker
	JWT             jwt.JWT
	Instrument      instrument.Instrumentation
	LoginLimiter    ratelimit.Limiter
	OtpReqLimiter   ratelimit.Limiter
	OtpVerifLimiter ratelimit.Limiter
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		uuid:          dep.UUID,
		codes:         dep.Codes,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		loginLimit:    dep.LoginLimiter,
		otpReqLimit:   dep.OtpReqLimiter,
		otpVerifLimit: dep.OtpVerifLimiter,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func normalizeMachine(machine string) string {
	machine = strings.TrimSpace(machine)
	if len(machine) > maxMachineLength {
		machine = machine[:maxMachineLength]
	}
	return machine
}

// issueOtpChallenge generates a fresh code for the (user, machine) pair,
// stores its hash, and hands the plaintext code to the notification pipeline.
// Any previously active challenge for the pair is invalidated in the same
// transaction. Publish failures are logged, not returned: the challenge stays
// valid and the user can ask for a resend.
func (s *Usecase) issueOtpChallenge(ctx context.Context, userID int64, email, name, lastname, machine string) error {
	code, err := s.codes.Digits(otpCodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.GetMinute("modules.auth.otp_ttl_minutes"))

	if err := s.repoDB.IssueOtpChallenge(ctx, entity.OtpChallenge{
		ID:        s.uid.Generate(),
		UserID:    userID,
		CodeHash:  string(codeHash),
		Machine:   machine,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo issue otp challenge", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOtpIssued(ctx, OtpIssuedEvent{
		UserID:    userID,
		Email:     email,
		Name:      name,
		Lastname:  lastname,
		Code:      code,
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "user_id", userID, "error", err)
	}

	return nil
}
