/*
Package user contains the representation of an account within the chat system.
*/
package user

import "time"

// User is a registered account.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	DateCreated time.Time `json:"date_created"`

	// PassHash is the bcrypt hash of the password. Never serialized.
	PassHash string `json:"-"`
}

// UpdateParams lists the mutable profile fields. Nil fields are left unchanged.
type UpdateParams struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}
