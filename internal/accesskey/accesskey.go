// Package accesskey issues and checks the short-lived keys that gate export
// endpoints. Keys are HS256 JWTs signed with a key derived per UTC day from
// a configured secret, so they rotate daily and cannot be guessed without
// the secret.
package accesskey

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	Issuer     = "resume-builder"
	DefaultTTL = 24 * time.Hour
	dayLayout  = "2006-01-02"
)

var ErrInvalidKey = errors.New("invalid access key")

// Key is an issued access key.
type Key struct {
	Token     string
	ExpiresAt time.Time
}

// Claims carried by a key.
type Claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(secret string, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("access key secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// dayKey derives the signing key for the UTC day containing t.
func (s *Service) dayKey(t time.Time) ([]byte, error) {
	info := []byte("resume-builder access key " + t.UTC().Format(dayLayout))
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, s.secret, nil, info), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// Issue signs a key for subject. It expires after the TTL or at the end of
// the UTC day, whichever is first.
func (s *Service) Issue(subject string) (Key, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	if eod := endOfDay(now); eod.Before(exp) {
		exp = eod
	}
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	key, err := s.dayKey(now)
	if err != nil {
		return Key{}, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return Key{}, fmt.Errorf("failed to sign key: %w", err)
	}
	return Key{Token: token, ExpiresAt: exp}, nil
}

// Verify checks a key against today's signing key.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	key, err := s.dayKey(s.now())
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return claims, nil
}
