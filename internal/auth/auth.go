// Package auth verifies the administrator's credentials and issues the
// bearer tokens that guard the admin API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/driftboat/internal/domain"
)

// Issuer is written to and required in every token.
const Issuer = "driftboat"

// Credentials is the single administrator account.
type Credentials struct {
	Email        string
	PasswordHash string // bcrypt
}

// Verify reports whether email and password match. Email comparison is
// case-insensitive. A missing hash never matches.
func (c Credentials) Verify(email, password string) bool {
	if c.Email == "" || c.PasswordHash == "" {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(c.Email))
	got := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	passOK := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	return emailOK && passOK
}

// Claims are the validated contents of a session token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens signing with secret. Tokens expire after ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of t using now as its time source.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	c := *t
	c.now = now
	return &c
}

// Issue signs a token for subject and returns it with its expiry.
func (t *Tokens) Issue(subject string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.Issue: %w", err)
	}
	return signed, exp, nil
}

// Verify parses and validates token. Every failure matches domain.ErrUnauthorized.
func (t *Tokens) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, fmt.Errorf("auth.Verify: missing token: %w", domain.ErrUnauthorized)
	}

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("auth.Verify: %w", errors.Join(domain.ErrUnauthorized, err))
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
