// Package auth provides JWT-based authentication for operator endpoints.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrAuthDisabled is returned when no signing secret is configured.
	ErrAuthDisabled = errors.New("auth disabled: no jwt secret configured")

	// ErrInvalidToken is returned for malformed, unsigned, or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// JWTService signs and verifies operator tokens.
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService builds a JWT helper with the given secret and expiry.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), expiry: expiry}
}

// Enabled reports whether a signing secret is configured.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

type operatorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Generate issues a signed operator token for the given subject.
func (s *JWTService) Generate(subject, name string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject required")
	}

	claims := operatorClaims{
		Name: strings.TrimSpace(name),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
		},
	}
	if s.expiry <= 0 {
		claims.ExpiresAt = nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token and returns the subject embedded in it.
func (s *JWTService) Validate(token string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}

	parsed, err := jwt.ParseWithClaims(token, &operatorClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*operatorClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
