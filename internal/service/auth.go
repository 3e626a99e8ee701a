package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/driftboat/internal/auth"
	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/loginlimit"
)

// AttemptLimiter is the subset of *loginlimit.Limiter the AuthService needs.
type AttemptLimiter interface {
	Load(ctx context.Context, client string) (loginlimit.Status, error)
	Check(ctx context.Context, client string) error
	RecordFailure(ctx context.Context, client string) (loginlimit.Status, error)
	RecordSuccess(ctx context.Context, client string) error
	Watch(ctx context.Context, client string) (<-chan loginlimit.Status, error)
}

var _ AttemptLimiter = (*loginlimit.Limiter)(nil)

// Session is an issued admin session.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginFailure reports rejected credentials together with the limiter state.
// It matches domain.ErrUnauthorized.
type LoginFailure struct {
	Status loginlimit.Status
}

func (e *LoginFailure) Error() string { return e.Status.Message }

func (e *LoginFailure) Unwrap() error { return domain.ErrUnauthorized }

// AuthService signs the administrator in, throttled per client.
type AuthService struct {
	creds   auth.Credentials
	tokens  *auth.Tokens
	limiter AttemptLimiter
	log     *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(creds auth.Credentials, tokens *auth.Tokens, limiter AttemptLimiter, log *slog.Logger) *AuthService {
	return &AuthService{creds: creds, tokens: tokens, limiter: limiter, log: log}
}

// Login checks the lockout, verifies the credentials and issues a token.
// A locked client gets a *loginlimit.LockedError without its credentials
// being checked. Bad credentials yield a *LoginFailure, or a LockedError when
// that failure triggered the lockout.
func (s *AuthService) Login(ctx context.Context, client, email, password string) (Session, error) {
	if err := s.limiter.Check(ctx, client); err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if !s.creds.Verify(email, password) {
		st, err := s.limiter.RecordFailure(ctx, client)
		if err != nil {
			return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
		}
		if st.Locked {
			s.log.WarnContext(ctx, "login locked out", "client", client, "attempts", st.Attempts)
			return Session{}, fmt.Errorf("service.AuthService.Login: %w", &loginlimit.LockedError{Status: st})
		}
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", &LoginFailure{Status: st})
	}

	if err := s.limiter.RecordSuccess(ctx, client); err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	token, exp, err := s.tokens.Issue(s.creds.Email)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	s.log.InfoContext(ctx, "admin signed in", "client", client)
	return Session{Token: token, ExpiresAt: exp}, nil
}

// Lockout returns the current limiter status for client.
func (s *AuthService) Lockout(ctx context.Context, client string) (loginlimit.Status, error) {
	st, err := s.limiter.Load(ctx, client)
	if err != nil {
		return loginlimit.Status{}, fmt.Errorf("service.AuthService.Lockout: %w", err)
	}
	return st, nil
}

// WatchLockout streams the limiter status for client until the lockout ends
// or ctx is done.
func (s *AuthService) WatchLockout(ctx context.Context, client string) (<-chan loginlimit.Status, error) {
	ch, err := s.limiter.Watch(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("service.AuthService.WatchLockout: %w", err)
	}
	return ch, nil
}

// Authenticate validates a bearer token.
func (s *AuthService) Authenticate(token string) (auth.Claims, error) {
	return s.tokens.Verify(token)
}
