/*
Package errs provides the application's closed set of error variants.

Every variant is identified by a numeric code and belongs to exactly one Kind. The
errorMap table binds each code to its kind, its client-facing message and the HTTP
status it is reported with, so transports never inspect error types to pick a status.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat, Message and User Lookup Errors
const (
	// ErrChatNotFound covers both a missing chat and a caller who is not a member of it.
	ErrChatNotFound = 2103

	// ErrMessageContentInvalid indicates an empty or oversized message body.
	ErrMessageContentInvalid = 2201

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = 2301
)

// 3xxx: Authentication and Token Errors
const (
	// ErrUnauthorized indicates that no usable credential was presented.
	ErrUnauthorized = 3001

	// ErrTokenExpired indicates that the presented token reached its natural expiry.
	ErrTokenExpired = 3002

	// ErrTokenInvalidated indicates that the presented token was revoked at logout.
	ErrTokenInvalidated = 3003

	// ErrWrongToken indicates a token that failed signature, algorithm or claim checks.
	ErrWrongToken = 3004

	// ErrWrongCredentials indicates a valid token whose subject no longer matches a real, unchanged user.
	ErrWrongCredentials = 3005

	// ErrInvalidCredentials indicates an unknown username or a wrong password at sign-in.
	ErrInvalidCredentials = 3006

	// ErrInvalidUsername indicates that the username does not satisfy the format rules.
	ErrInvalidUsername = 3007

	// ErrInvalidPassword indicates that the password does not satisfy the length rules.
	ErrInvalidPassword = 3008

	// ErrUserAlreadyExists indicates that the username is already taken.
	ErrUserAlreadyExists = 3009
)

// 4xxx: Persistence Errors
const (
	// ErrCrud indicates that a write or read against the relational store failed.
	ErrCrud = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
