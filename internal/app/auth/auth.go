/*
Package auth resolves presented tokens into identities and implements the
sign-in, sign-up, refresh and logout flows.

Every token goes through the same four stages in order and the first failure wins:
extraction, signature and expiry decoding, the revocation lookup, and the user lookup.
*/
package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// TokenService issues and decodes signed tokens.
type TokenService interface {
	IssueTokenPair(userID int64, username string) (access, refresh string, err error)
	Decode(raw string) (*jwt.Payload, error)
}

// RevocationStore records tokens invalidated before their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, exp int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserStore is the account persistence the auth flows depend on.
// Lookups return nil without error when the user does not exist.
type UserStore interface {
	CreateUser(ctx context.Context, username, passHash string) (*user.User, error)
	GetUserByName(ctx context.Context, username string) (*user.User, error)
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

// Identity is the outcome of a successfully resolved token.
type Identity struct {
	User  *user.User
	Token *jwt.Payload
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements the auth pipeline and flows.
type Service struct {
	tokens      TokenService
	revocations RevocationStore
	users       UserStore
	logger      zerolog.Logger
}

// NewService constructs a Service.
func NewService(tokens TokenService, revocations RevocationStore, users UserStore) *Service {
	return &Service{
		tokens:      tokens,
		revocations: revocations,
		users:       users,
		logger:      logx.Component("Auth"),
	}
}

// Resolve runs a raw token through decoding, the revocation check and the user lookup.
//
//   - empty token: ErrUnauthorized
//   - expired: ErrTokenExpired
//   - bad signature, algorithm or claims: ErrWrongToken
//   - revoked: ErrTokenInvalidated
//   - subject missing or renamed since issue: ErrWrongCredentials
func (s *Service) Resolve(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	payload, err := s.tokens.Decode(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, errs.NewError(errs.ErrTokenExpired, err)
		}
		return nil, errs.NewError(errs.ErrWrongToken, err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, payload.JTI())
	if err != nil {
		s.logger.Error().Err(err).Msg("Revocation lookup failed")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	if revoked {
		return nil, errs.NewError(errs.ErrTokenInvalidated)
	}

	userID, err := payload.UserID()
	if err != nil {
		return nil, errs.NewError(errs.ErrWrongToken, err)
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Username != payload.Name {
		return nil, errs.NewError(errs.ErrWrongCredentials)
	}

	return &Identity{User: u, Token: payload}, nil
}

// SignIn verifies the credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// SignUp creates an account and issues a token pair for it.
func (s *Service) SignUp(ctx context.Context, username, password string) (*TokenPair, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errs.HasCode(err, errs.ErrUserAlreadyExists) {
			s.logger.Warn().Str("username", username).Msg("Registration conflict: username already exists")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", u.ID).Msg("User registered.")
	return s.issue(u)
}

// Refresh resolves a refresh token and issues a new pair.
// The presented refresh token is not revoked and stays valid until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	identity, err := s.Resolve(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return s.issue(identity.User)
}

// Logout revokes the token the identity was resolved from for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, identity *Identity) error {
	if err := s.revocations.Revoke(ctx, identity.Token.JTI(), identity.Token.ExpiresUnix()); err != nil {
		s.logger.Error().Err(err).Int64("user_id", identity.User.ID).Msg("Failed to revoke token")
		return errs.NewError(errs.ErrUnknown, err)
	}

	s.logger.Info().Int64("user_id", identity.User.ID).Msg("User logged out.")
	return nil
}

func (s *Service) issue(u *user.User) (*TokenPair, error) {
	access, refresh, err := s.tokens.IssueTokenPair(u.ID, u.Username)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Token issue failed")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
