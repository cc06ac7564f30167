package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/satriojati/otpgate/internal/auth/inbound"
	"github.com/satriojati/otpgate/internal/auth/outbound/db"
	"github.com/satriojati/otpgate/internal/auth/outbound/mq"
	"github.com/satriojati/otpgate/internal/auth/usecase"
	"github.com/satriojati/otpgate/internal/pkg/clock"
	"github.com/satriojati/otpgate/internal/pkg/config"
	"github.com/satriojati/otpgate/internal/pkg/hash"
	"github.com/satriojati/otpgate/internal/pkg/idempotency"
	"github.com/satriojati/otpgate/internal/pkg/instrument"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
	"github.com/satriojati/otpgate/internal/pkg/messaging"
	"github.com/satriojati/otpgate/internal/pkg/otp"
	"github.com/satriojati/otpgate/internal/pkg/ratelimit"
	"github.com/satriojati/otpgate/internal/pkg/router"
	"github.com/satriojati/otpgate/internal/pkg/uid"
	"github.com/satriojati/otpgate/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	Codes       otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	loginLimiter := ratelimit.NewFixedWindow(dep.CacheConn, "rl:login:",
		int64(dep.Config.GetInt("modules.auth.login_rate_max")),
		dep.Config.GetMinute("modules.auth.rate_window_minutes"))
	otpReqLimiter := ratelimit.NewFixedWindow(dep.CacheConn, "rl:otp_request:",
		int64(dep.Config.GetInt("modules.auth.otp_request_rate_max")),
		dep.Config.GetMinute("modules.auth.rate_window_minutes"))
	otpVerifLimiter := ratelimit.NewFixedWindow(dep.CacheConn, "rl:otp_verify:",
		int64(dep.Config.GetInt("modules.auth.otp_verify_rate_max")),
		dep.Config.GetMinute("modules.auth.rate_window_minutes"))

	uc := usecase.New(usecase.Dependency{
		RepoDB:          dbAuth,
		RepoMessaging:   repoMsg,
		Idempotency:     dep.Idempotency,
		Validator:       dep.Validator,
		Config:          dep.Config,
		HMAC:            dep.HMAC,
		Bcrypt:          dep.Bcrypt,
		UID:             dep.UID,
		UUID:            dep.UUID,
		Codes:           dep.Codes,
		Clock:           dep.Clock,
		JWT:             dep.JWT,
		Instrument:      dep.Instrument,
		LoginLimiter:    loginLimiter,
		OtpReqLimiter:   otpReqLimiter,
		OtpVerifLimiter: otpVerifLimiter,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
