package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/pkg/id"
	"github.com/klikk/verify-api/internal/pkg/otp"
)

// smsBody is the outbound message format. The <#> prefix and trailing app
// domain enable iOS SMS code auto-fill.
const smsBody = "<#> Your Klikk verification code is: %s. This code will expire in 10 minutes. %s"

// Store persists issued codes. Implementations must keep at most one active
// record per identity: Issue invalidates every prior active record for the
// identity before inserting the new one.
type Store interface {
	Issue(ctx context.Context, v *domain.VerificationCode) error
	// LatestActive returns the most recently created non-consumed record for
	// the identity, wrapping domain.ErrNotFound when there is none. Expired
	// records are still returned; expiry is gated by the service.
	LatestActive(ctx context.Context, identity string) (*domain.VerificationCode, error)
	// RecordAttempt increments the attempt counter and returns the updated
	// record, wrapping domain.ErrNotFound if the record no longer exists.
	RecordAttempt(ctx context.Context, codeID string) (*domain.VerificationCode, error)
	// MarkConsumed sets consumed=true. Idempotent; consuming a record that
	// is already consumed or gone is not an error.
	MarkConsumed(ctx context.Context, codeID string) error
}

// Dispatcher delivers the code to the shopper. Failures are reported, never
// retried here; resend is an explicit RequestCode call.
type Dispatcher interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Generator produces one code per call.
type Generator func() (string, error)

// RequestResult reports an issuance. Code is populated only on the
// development-mode dispatch-failure path, mirroring the storefront's
// test-without-SMS behavior.
type RequestResult struct {
	Identity string
	Code     string
}

// Service runs the one-time-code state machine:
// NoCode -> Pending (RequestCode) -> Verified | Expired | Exhausted, where a
// fresh RequestCode restarts the machine from any terminal state.
type Service interface {
	RequestCode(ctx context.Context, identity string) (*RequestResult, error)
	// VerifyCode returns the remaining attempt count together with the
	// outcome. On success err is nil; otherwise err wraps ErrNotFound,
	// ErrExpired, ErrExhausted or ErrCodeMismatch, and only the mismatch
	// case carries a non-zero remaining count.
	VerifyCode(ctx context.Context, identity, candidate string) (int, error)
}

// ServiceDeps collects everything the service needs. Zero values fall back
// to production defaults so tests can set only what they exercise.
type ServiceDeps struct {
	Store           Store
	Dispatcher      Dispatcher
	Generate        Generator     // defaults to otp.Generate
	CodeTTL         time.Duration // defaults to 10m
	MaxAttempts     int           // defaults to 3
	DispatchTimeout time.Duration // defaults to 10s
	AppDomain       string        // defaults to klinkur.is
	DevMode         bool
}

type service struct {
	store           Store
	dispatcher      Dispatcher
	generate        Generator
	codeTTL         time.Duration
	maxAttempts     int
	dispatchTimeout time.Duration
	appDomain       string
	devMode         bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:           deps.Store,
		dispatcher:      deps.Dispatcher,
		generate:        deps.Generate,
		codeTTL:         deps.CodeTTL,
		maxAttempts:     deps.MaxAttempts,
		dispatchTimeout: deps.DispatchTimeout,
		appDomain:       deps.AppDomain,
		devMode:         deps.DevMode,
		locks:           make(map[string]*sync.Mutex),
	}
	if s.generate == nil {
		s.generate = otp.Generate
	}
	if s.codeTTL == 0 {
		s.codeTTL = 10 * time.Minute
	}
	if s.maxAttempts == 0 {
		s.maxAttempts = 3
	}
	if s.dispatchTimeout == 0 {
		s.dispatchTimeout = 10 * time.Second
	}
	if s.appDomain == "" {
		s.appDomain = "klinkur.is"
	}
	return s
}

// lock returns the per-identity mutex, creating it on first use. Issuance
// must be serialized per identity so a racing pair of RequestCode calls
// cannot leave two active records; verification takes the same lock so the
// cap check and the attempt increment act as one step and attempts never
// pass the maximum.
func (s *service) lock(identity string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[identity]
	if !ok {
		m = &sync.Mutex{}
		s.locks[identity] = m
	}
	return m
}

func (s *service) RequestCode(ctx context.Context, identity string) (*RequestResult, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity required: %w", domain.ErrBadRequest)
	}

	mu := s.lock(identity)
	mu.Lock()
	defer mu.Unlock()

	code, err := s.generate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &domain.VerificationCode{
		CodeID:    id.New(),
		Identity:  identity,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}
	if err := s.store.Issue(ctx, v); err != nil {
		return nil, fmt.Errorf("issue verification code: %w", err)
	}

	// Store-then-send, deliberately non-atomic: if dispatch fails the issued
	// record stays valid, so a late-arriving SMS can still be verified and an
	// explicit resend starts a fresh record.
	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	if err := s.dispatcher.SendSMS(sendCtx, identity, fmt.Sprintf(smsBody, code, s.appDomain)); err != nil {
		if s.devMode {
			slog.Info("SMS dispatch failed in development, echoing code", "identity", identity, "code", code)
			return &RequestResult{Identity: identity, Code: code}, nil
		}
		slog.Warn("SMS dispatch failed, issued code remains valid", "identity", identity, "err", err)
		return nil, fmt.Errorf("send verification SMS: %w", domain.ErrDispatchFailed)
	}

	return &RequestResult{Identity: identity}, nil
}

func (s *service) VerifyCode(ctx context.Context, identity, candidate string) (int, error) {
	if identity == "" || candidate == "" {
		return 0, fmt.Errorf("identity and code required: %w", domain.ErrBadRequest)
	}

	mu := s.lock(identity)
	mu.Lock()
	defer mu.Unlock()

	v, err := s.store.LatestActive(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("no verification code found: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("load verification code: %w", err)
	}

	// Pure expiry does not burn an attempt; the record is already dead.
	if time.Now().After(v.ExpiresAt) {
		return 0, fmt.Errorf("verification code expired: %w", domain.ErrExpired)
	}
	if v.Attempts >= s.maxAttempts {
		return 0, fmt.Errorf("maximum verification attempts exceeded: %w", domain.ErrExhausted)
	}

	// Attempts count on every call from here on, the winning one included:
	// a shopper gets maxAttempts tries in total.
	v, err = s.store.RecordAttempt(ctx, v.CodeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("no verification code found: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("record verification attempt: %w", err)
	}
	remaining := s.maxAttempts - v.Attempts
	if remaining < 0 {
		remaining = 0
	}

	if v.Code != candidate {
		return remaining, fmt.Errorf("invalid verification code: %w", domain.ErrCodeMismatch)
	}

	if err := s.store.MarkConsumed(ctx, v.CodeID); err != nil {
		slog.Warn("failed to mark code consumed", "code_id", v.CodeID, "err", err)
	}
	return remaining, nil
}
