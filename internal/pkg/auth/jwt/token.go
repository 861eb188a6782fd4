/*
Package jwt issues and verifies the signed tokens that identify callers.

Tokens are signed with an RSA private key and verified with the matching public key.
The signing algorithm is pinned at construction time; a token that names any other
algorithm is rejected before its claims are looked at.
*/
package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired is returned by Decode when the token reached its exp.
	ErrExpired = errors.New("token expired")

	// ErrMalformed is returned by Decode for bad signatures, wrong algorithms and
	// missing or ill-typed claims.
	ErrMalformed = errors.New("malformed token")
)

// Config configures a Service.
type Config struct {
	// PrivateKeyPEM and PublicKeyPEM are PEM encoded RSA keys. Literal "\n" sequences
	// are accepted so keys can be passed through single-line environment variables.
	PrivateKeyPEM string
	PublicKeyPEM  string

	// Algorithm is one of RS256, RS384, RS512.
	Algorithm string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service signs and verifies tokens.
type Service struct {
	method     *gjwt.SigningMethodRSA
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService parses the configured keys and returns a ready Service.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	method, ok := gjwt.GetSigningMethod(cfg.Algorithm).(*gjwt.SigningMethodRSA)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	privateKey, err := gjwt.ParseRSAPrivateKeyFromPEM([]byte(normalizePEM(cfg.PrivateKeyPEM)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, err := gjwt.ParseRSAPublicKeyFromPEM([]byte(normalizePEM(cfg.PublicKeyPEM)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	s := &Service{
		method:     method,
		privateKey: privateKey,
		publicKey:  publicKey,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueTokenPair mints an access and a refresh token for the user.
// Both share sub and name and get their own jti.
func (s *Service) IssueTokenPair(userID int64, username string) (string, string, error) {
	now := s.now()

	access, err := s.sign(userID, username, now, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.sign(userID, username, now, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return access, refresh, nil
}

func (s *Service) sign(userID int64, username string, now time.Time, ttl time.Duration) (string, error) {
	payload := &Payload{
		Name: username,
		RegisteredClaims: gjwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  gjwt.NewNumericDate(now),
			ExpiresAt: gjwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return gjwt.NewWithClaims(s.method, payload).SignedString(s.privateKey)
}

// Decode verifies the signature and algorithm of raw and returns its claims.
// A token is expired from the second its exp is reached; there is no leeway.
func (s *Service) Decode(raw string) (*Payload, error) {
	parser := gjwt.NewParser(
		gjwt.WithValidMethods([]string{s.method.Alg()}),
		gjwt.WithExpirationRequired(),
		gjwt.WithTimeFunc(s.now),
	)

	payload := &Payload{}
	token, err := parser.ParseWithClaims(raw, payload, func(t *gjwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return s.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, gjwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !token.Valid || !payload.hasRequiredClaims() {
		return nil, ErrMalformed
	}

	return payload, nil
}

func normalizePEM(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), `\n`, "\n")
}
