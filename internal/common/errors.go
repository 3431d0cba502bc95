// Package common defines shared constants and sentinel errors used across
// client and server layers of AuthKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password so account existence cannot be probed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrWrongTokenClass       = errors.New("wrong token class")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrMissingToken          = errors.New("refresh token is required")
	ErrUserNotFound          = errors.New("user not found")
)
