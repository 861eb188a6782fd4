package auth

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)

const (
	minPasswordLength = 6
	maxPasswordLength = 50

	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

// dummyHash is compared against when the user does not exist so both failure
// paths spend the same bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// VerifyCredentials returns the user whose stored hash matches password.
// An unknown username and a wrong password both yield ErrInvalidCredentials.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.users.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}

	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.logger.Warn().Msg("Sign-in: unknown username")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Sign-in: stored hash unusable")
		}
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	return u, nil
}

// HashPassword hashes password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.NewError(errs.ErrUnknown, err)
	}
	return string(hash), nil
}

// ValidateUsername checks the username format: 4 to 20 lowercase letters, digits or underscores.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errs.NewError(errs.ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword checks the password length.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength || len(password) > maxPasswordBytes {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}
