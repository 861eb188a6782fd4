/*
Package req provides helper functions for HTTP request parsing and data binding.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"roomchat/internal/pkg/errs"
)

// MaxJSONBodySize is the upper bound for JSON request bodies.
const MaxJSONBodySize int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
// Unknown fields and trailing content are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// PathInt64 parses a positive integer path or query value.
func PathInt64(raw string) (int64, *errs.CustomError) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return v, nil
}

// QueryInt parses an optional integer query parameter.
// It returns def when the parameter is absent.
func QueryInt(r *http.Request, key string, def int) (int, *errs.CustomError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return v, nil
}

// QueryOptionalInt64 parses an optional integer query parameter, returning nil when absent.
func QueryOptionalInt64(r *http.Request, key string) (*int64, *errs.CustomError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	return &v, nil
}
