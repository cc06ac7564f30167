package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/satriojati/otpgate/internal/auth/entity"
	"github.com/satriojati/otpgate/internal/pkg/config"
	"github.com/satriojati/otpgate/internal/pkg/goerror"
	"github.com/satriojati/otpgate/internal/pkg/hash"
	"github.com/satriojati/otpgate/internal/pkg/idempotency"
	"github.com/satriojati/otpgate/internal/pkg/instrument"
	"github.com/satriojati/otpgate/internal/pkg/jwt"
	"github.com/satriojati/otpgate/internal/pkg/otp"
	"github.com/satriojati/otpgate/internal/pkg/validator"
)

var errTest = errors.New("backend unavailable")

const testConfigYAML = `
modules:
  auth:
    otp_ttl_minutes: 5
    session_ttl_hours: 24
`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeNumberID struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeNumberID) Generate() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

type fakeStringID struct {
	mu   sync.Mutex
	next int
}

func (f *fakeStringID) Generate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return "token-id-" + strconv.Itoa(f.next)
}

type fakeLimiter struct {
	err   error
	mu    sync.Mutex
	calls []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	return f.err
}

type fakeIdempotency struct {
	state idempotency.State
}

func (f *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return f.state, nil
}

func (f *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (f *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error    { return nil }

func (f *fakeIdempotency) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	switch f.state {
	case idempotency.StateInProgress:
		return idempotency.ErrAlreadyInProgress
	case idempotency.StateCompleted:
		return idempotency.ErrAlreadyCompleted
	case idempotency.StateFailed:
		return idempotency.ErrAlreadyFailed
	}
	return fn(ctx)
}

type storedUser struct {
	info entity.UserLoginInfo
}

// fakeRepo mimics the persistence semantics the usecases rely on: one live
// challenge per (user, machine) pair and serialized challenge consumption.
type fakeRepo struct {
	mu         sync.Mutex
	users      map[string]*storedUser           // by email
	challenges map[string]*entity.OtpChallenge  // by userID:machine
	sessions   map[string]*entity.Session       // by token id
	failWith   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      map[string]*storedUser{},
		challenges: map[string]*entity.OtpChallenge{},
		sessions:   map[string]*entity.Session{},
	}
}

func challengeKey(userID int64, machine string) string {
	return fmt.Sprintf("%d:%s", userID, machine)
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}

	su, ok := r.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.User{
		ID:       su.info.ID,
		Email:    su.info.Email,
		Name:     su.info.Name,
		Lastname: su.info.Lastname,
		Status:   su.info.Status,
	}, nil
}

func (r *fakeRepo) GetUserLoginInfo(_ context.Context, email string) (*entity.UserLoginInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}

	su, ok := r.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	info := su.info
	return &info, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, user entity.NewUser, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	if _, ok := r.users[user.Email]; ok {
		return goerror.ErrConflict
	}
	r.users[user.Email] = &storedUser{info: entity.UserLoginInfo{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Lastname: user.Lastname,
		Status:   user.Status,
		Password: hash,
	}}
	return nil
}

func (r *fakeRepo) IssueOtpChallenge(_ context.Context, in entity.OtpChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	ch := in
	r.challenges[challengeKey(in.UserID, in.Machine)] = &ch
	return nil
}

func (r *fakeRepo) ConsumeOtpChallenge(_ context.Context, userID int64, machine, codeHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	ch, ok := r.challenges[challengeKey(userID, machine)]
	if !ok {
		return goerror.ErrNotFound
	}
	if subtle.ConstantTimeCompare([]byte(ch.CodeHash), []byte(codeHash)) != 1 {
		return entity.ErrOtpMismatch
	}
	if ch.Consumed {
		return entity.ErrOtpConsumed
	}
	ch.Consumed = true
	if now.After(ch.ExpiresAt) {
		return entity.ErrOtpExpired
	}
	return nil
}

func (r *fakeRepo) CreateSession(_ context.Context, in entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	s := in
	r.sessions[in.TokenID] = &s
	return nil
}

func (r *fakeRepo) GetSessionByTokenID(_ context.Context, tokenID string) (*entity.SessionUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}

	s, ok := r.sessions[tokenID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	for _, su := range r.users {
		if su.info.ID == s.UserID {
			return &entity.SessionUser{
				SessionID:        s.ID,
				SessionRevoked:   s.Revoked,
				SessionExpiresAt: s.ExpiresAt,
				UserID:           su.info.ID,
				UserEmail:        su.info.Email,
				UserName:         su.info.Name,
				UserLastname:     su.info.Lastname,
				UserStatus:       su.info.Status,
			}, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) RevokeSession(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	if s, ok := r.sessions[tokenID]; ok {
		s.Revoked = true
	}
	return nil
}

func (r *fakeRepo) challenge(userID int64, machine string) *entity.OtpChallenge {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[challengeKey(userID, machine)]
	if !ok {
		return nil
	}
	cp := *ch
	return &cp
}

func (r *fakeRepo) session(tokenID string) *entity.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

type fakeMessaging struct {
	mu     sync.Mutex
	err    error
	events []OtpIssuedEvent
}

func (m *fakeMessaging) PublishOtpIssued(_ context.Context, msg OtpIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, msg)
	return nil
}

func (m *fakeMessaging) last() *OtpIssuedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	ev := m.events[len(m.events)-1]
	return &ev
}

func (m *fakeMessaging) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type fixture struct {
	uc     *Usecase
	repo   *fakeRepo
	msgr   *fakeMessaging
	clock  *fakeClock
	bcrypt hash.Hash
	hmac   hash.Hash
	jwt    jwt.JWT

	idemp         *fakeIdempotency
	loginLimit    *fakeLimiter
	otpReqLimit   *fakeLimiter
	otpVerifLimit *fakeLimiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	clk := &fakeClock{now: time.Now()}
	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "otpgate-test",
		Audiences: []string{"otpgate-test"},
		TTL:       time.Hour,
		Clock:     clk,
	})
	if err != nil {
		t.Fatalf("build jwt: %v", err)
	}

	f := &fixture{
		repo:          newFakeRepo(),
		msgr:          &fakeMessaging{},
		clock:         clk,
		bcrypt:        hash.NewBcrypt(4, "test-pepper"),
		hmac:          hash.NewHMACSHA256("test-hmac-secret"),
		jwt:           signer,
		idemp:         &fakeIdempotency{},
		loginLimit:    &fakeLimiter{},
		otpReqLimit:   &fakeLimiter{},
		otpVerifLimit: &fakeLimiter{},
	}

	f.uc = New(Dependency{
		RepoDB:          f.repo,
		RepoMessaging:   f.msgr,
		Idempotency:     f.idemp,
		Validator:       v10,
		Config:          cfg,
		HMAC:            f.hmac,
		Bcrypt:          f.bcrypt,
		UID:             &fakeNumberID{},
		UUID:            &fakeStringID{},
		Codes:           otp.NewCrypto(),
		Clock:           clk,
		JWT:             signer,
		Instrument:      instrument.NewNoop(),
		LoginLimiter:    f.loginLimit,
		OtpReqLimiter:   f.otpReqLimit,
		OtpVerifLimiter: f.otpVerifLimit,
	})

	return f
}

func (f *fixture) addUser(t *testing.T, id int64, email, password string, status entity.UserStatus) {
	t.Helper()

	hashed, err := f.bcrypt.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.repo.users[email] = &storedUser{info: entity.UserLoginInfo{
		ID:       id,
		Email:    email,
		Name:     "Test",
		Lastname: "User",
		Status:   status,
		Password: string(hashed),
	}}
}

func asGoError(t *testing.T, err error) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	return gerr
}
