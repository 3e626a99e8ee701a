// Package loginlimit tracks consecutive failed admin logins per client and
// locks the client out for a cooldown once too many accumulate.
//
// State is keyed by a client identifier the caller supplies. A client that
// changes its identifier starts over with a clean count; the limiter is a
// deterrent, not an account lock.
package loginlimit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkordes/driftboat/internal/domain"
)

const (
	// MaxAttempts is the number of consecutive failures that triggers a lockout.
	MaxAttempts = 5
	// LockoutDuration is how long a locked client must wait.
	LockoutDuration = 15 * time.Minute
	// AttemptWindow is how long a partial failure count is remembered.
	AttemptWindow = 15 * time.Minute
	// KeyPrefix namespaces limiter state in the Store.
	KeyPrefix = "login_attempts:"
)

// record is the persisted state. Times are epoch milliseconds.
type record struct {
	Attempts    int    `json:"attempts"`
	LastAttempt int64  `json:"lastAttempt"`
	LockedUntil *int64 `json:"lockedUntil,omitempty"`
}

// Status is the limiter state as seen by a client.
type Status struct {
	Attempts    int       `json:"attempts"`
	Remaining   int       `json:"remaining"`
	Locked      bool      `json:"locked"`
	LockedUntil time.Time `json:"lockedUntil,omitzero"`
	Message     string    `json:"message,omitempty"`
}

// RetryAfter returns how long until the lockout ends, or 0 when unlocked.
func (s Status) RetryAfter(now time.Time) time.Duration {
	if !s.Locked {
		return 0
	}
	return max(s.LockedUntil.Sub(now), 0)
}

// LockedError is returned while a client is locked out. It matches domain.ErrLocked.
type LockedError struct {
	Status Status
}

func (e *LockedError) Error() string {
	return e.Status.Message
}

func (e *LockedError) Unwrap() error {
	return domain.ErrLocked
}

// Limiter implements the attempt state machine over a Store.
type Limiter struct {
	store Store
	now   func() time.Time
	tick  time.Duration

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithTick overrides the Watch interval (default one second).
func WithTick(d time.Duration) Option {
	return func(l *Limiter) { l.tick = d }
}

// New returns a Limiter persisting to store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now, tick: time.Second}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key returns the Store key holding state for client.
func Key(client string) string {
	return KeyPrefix + client
}

// Load returns the current state for client, clearing it first when the
// lockout has expired or the last failure is older than AttemptWindow.
func (l *Limiter) Load(ctx context.Context, client string) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, client, l.now())
}

func (l *Limiter) load(ctx context.Context, client string, now time.Time) (Status, error) {
	key := Key(client)
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return Status{}, fmt.Errorf("loginlimit.Load: %w", err)
	}
	if !ok {
		return unlocked(0), nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// Unreadable state is treated as absent.
		return l.clear(ctx, key)
	}

	if rec.LockedUntil != nil {
		until := time.UnixMilli(*rec.LockedUntil)
		if until.After(now) {
			return locked(rec.Attempts, until, now), nil
		}
		return l.clear(ctx, key)
	}
	if now.Sub(time.UnixMilli(rec.LastAttempt)) > AttemptWindow {
		return l.clear(ctx, key)
	}
	return unlocked(rec.Attempts), nil
}

func (l *Limiter) clear(ctx context.Context, key string) (Status, error) {
	if err := l.store.Delete(ctx, key); err != nil {
		return Status{}, fmt.Errorf("loginlimit.clear: %w", err)
	}
	return unlocked(0), nil
}

// Check returns a *LockedError when client may not attempt a login now.
func (l *Limiter) Check(ctx context.Context, client string) error {
	st, err := l.Load(ctx, client)
	if err != nil {
		return err
	}
	if st.Locked {
		return &LockedError{Status: st}
	}
	return nil
}

// RecordFailure counts one failed login. The returned status carries the
// remaining-attempts message, or the lockout message when this failure
// reached MaxAttempts. A client that is already locked is not counted again
// and gets a *LockedError.
func (l *Limiter) RecordFailure(ctx context.Context, client string) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, err := l.load(ctx, client, now)
	if err != nil {
		return Status{}, err
	}
	if st.Locked {
		return st, &LockedError{Status: st}
	}

	rec := record{Attempts: st.Attempts + 1, LastAttempt: now.UnixMilli()}
	next := failed(rec.Attempts)
	if rec.Attempts >= MaxAttempts {
		until := now.Add(LockoutDuration)
		ms := until.UnixMilli()
		rec.LockedUntil = &ms
		next = locked(rec.Attempts, until, now)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return Status{}, fmt.Errorf("loginlimit.RecordFailure: %w", err)
	}
	if err := l.store.Set(ctx, Key(client), raw); err != nil {
		return Status{}, fmt.Errorf("loginlimit.RecordFailure: %w", err)
	}
	return next, nil
}

// RecordSuccess clears all state for client.
func (l *Limiter) RecordSuccess(ctx context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Delete(ctx, Key(client)); err != nil {
		return fmt.Errorf("loginlimit.RecordSuccess: %w", err)
	}
	return nil
}

// Watch emits the client's status once per tick while it is locked. When
// the lockout ends the state is cleared, a final unlocked status is sent and
// the channel is closed. An unlocked client gets one status and a closed
// channel. The channel is also closed when ctx is done.
func (l *Limiter) Watch(ctx context.Context, client string) (<-chan Status, error) {
	first, err := l.Load(ctx, client)
	if err != nil {
		return nil, err
	}

	ch := make(chan Status, 1)
	ch <- first
	if !first.Locked {
		close(ch)
		return ch, nil
	}

	go func() {
		defer close(ch)
		ticker := time.NewTicker(l.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			st, err := l.Load(ctx, client)
			if err != nil {
				return
			}
			select {
			case ch <- st:
			case <-ctx.Done():
				return
			}
			if !st.Locked {
				return
			}
		}
	}()
	return ch, nil
}

func unlocked(attempts int) Status {
	return Status{Attempts: attempts, Remaining: MaxAttempts - attempts}
}

func failed(attempts int) Status {
	st := unlocked(attempts)
	st.Message = fmt.Sprintf("Invalid email or password. %d attempt(s) remaining.", st.Remaining)
	return st
}

func locked(attempts int, until, now time.Time) Status {
	return Status{
		Attempts:    attempts,
		Locked:      true,
		LockedUntil: until,
		Message:     "Too many failed login attempts. Try again in " + countdown(until.Sub(now)) + ".",
	}
}

// countdown renders d as M:SS, rounding up to the next whole second.
func countdown(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	secs = max(secs, 0)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
