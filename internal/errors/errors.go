package errors

import (
	"errors"
	"fmt"
)

// Common error types for the course portal client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired, please log in again")
	ErrSessionLoading   = errors.New("session is still loading")

	// Fallback messages when the backend gives no usable reason
	ErrLoginFailed         = errors.New("Login failed")
	ErrRegistrationFailed  = errors.New("Registration failed")
	ErrProfileUpdateFailed = errors.New("Profile update failed")

	// Token errors
	ErrNoAccessToken  = errors.New("no access token")
	ErrNoRefreshToken = errors.New("no refresh token")

	// Input errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrPasswordsMismatch = errors.New("passwords don't match")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error with the supplied message
func New(msg string) error {
	return errors.New(msg)
}
