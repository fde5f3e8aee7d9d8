// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrEmptyInput      = errors.New("empty QR payload")
	ErrInvalidPayload  = errors.New("invalid QR payload")
	ErrNoValidItems    = errors.New("no valid QR items found")
	ErrNoItemsFound    = errors.New("no QR codes found in image")
	ErrUnreadableImage = errors.New("unreadable image")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsUserError reports whether err carries a user-facing message.
func IsUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}

// UserMessage returns the user-facing message carried by err, or a generic one.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return "internal error"
}
