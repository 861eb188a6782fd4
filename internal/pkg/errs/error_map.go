package errs

import "net/http"

// Kind groups error variants by the layer that raises them.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindService
	KindAuth
	KindCrud
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindService:
		return "service"
	case KindAuth:
		return "auth"
	case KindCrud:
		return "crud"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// errorMap is the single table from error code to kind, message and HTTP status.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Kind: KindRequest, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Kind: KindRequest, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Kind: KindRequest, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Kind: KindRequest, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Kind: KindRequest, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Kind: KindRequest, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat, Message and User Lookup Errors
	ErrChatNotFound:          {Code: ErrChatNotFound, Kind: KindService, Message: "No chat", Status: http.StatusNotFound},
	ErrMessageContentInvalid: {Code: ErrMessageContentInvalid, Kind: KindService, Message: "Message content must be between 1 and %d characters.", Status: http.StatusBadRequest},
	ErrUserNotFound:          {Code: ErrUserNotFound, Kind: KindService, Message: "Couldn't find user", Status: http.StatusNotFound},

	// 3xxx: Authentication and Token Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Kind: KindAuth, Message: "Not authenticated", Status: http.StatusUnauthorized},
	ErrTokenExpired:       {Code: ErrTokenExpired, Kind: KindAuth, Message: "Token expired", Status: http.StatusUnauthorized},
	ErrTokenInvalidated:   {Code: ErrTokenInvalidated, Kind: KindAuth, Message: "Token invalidated", Status: http.StatusUnauthorized},
	ErrWrongToken:         {Code: ErrWrongToken, Kind: KindService, Message: "Wrong token", Status: http.StatusBadRequest},
	ErrWrongCredentials:   {Code: ErrWrongCredentials, Kind: KindAuth, Message: "No such user", Status: http.StatusBadRequest},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Kind: KindAuth, Message: "Wrong username or password", Status: http.StatusUnauthorized},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Kind: KindRequest, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Kind: KindRequest, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Kind: KindCrud, Message: "Username already taken", Status: http.StatusConflict},

	// 4xxx: Persistence Errors
	ErrCrud: {Code: ErrCrud, Kind: KindCrud, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
