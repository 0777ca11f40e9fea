package apierr

import (
	"errors"
	"fmt"
)

// Common error types for the registry client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRefreshExpired     = errors.New("refresh credential invalid or expired")
	ErrUnauthorized       = errors.New("unauthorized")

	// Resource errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")

	// Transport errors
	ErrNetwork = errors.New("network error")

	// General errors
	ErrInternal = errors.New("internal error")
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
