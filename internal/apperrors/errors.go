package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUnauthorized        = errors.New("authentication required")
	ErrTokenExpired        = errors.New("token is expired")
	ErrTokenBlacklisted    = errors.New("token is logged out")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid")

	// Returned by the revocation ledger when no refresh record is stored for a subject
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)
