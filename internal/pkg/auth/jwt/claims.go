package jwt

import (
	"strconv"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Payload is the claim set carried by both access and refresh tokens.
// Both kinds are structurally identical; the transport (bearer header or cookie)
// tells them apart.
type Payload struct {
	// Name is the username of the subject at issue time.
	Name string `json:"name"`

	// RegisteredClaims carries jti (ID), sub (Subject), iat and exp.
	gjwt.RegisteredClaims
}

// JTI returns the unique token id.
func (p *Payload) JTI() string {
	return p.ID
}

// UserID parses the numeric subject.
func (p *Payload) UserID() (int64, error) {
	return strconv.ParseInt(p.Subject, 10, 64)
}

// ExpiresUnix returns exp as Unix seconds.
func (p *Payload) ExpiresUnix() int64 {
	if p.ExpiresAt == nil {
		return 0
	}
	return p.ExpiresAt.Unix()
}

// IssuedUnix returns iat as Unix seconds.
func (p *Payload) IssuedUnix() int64 {
	if p.IssuedAt == nil {
		return 0
	}
	return p.IssuedAt.Unix()
}

func (p *Payload) hasRequiredClaims() bool {
	return p.ID != "" && p.Subject != "" && p.Name != "" && p.IssuedAt != nil && p.ExpiresAt != nil
}
