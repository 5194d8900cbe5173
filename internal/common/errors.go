// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Credential errors.
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrNoToken           = errors.New("no token returned")
	ErrInvalidToken      = errors.New("invalid token payload")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NetworkError reports a transport failure: the request never produced a response.
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError reports a non-2xx response from the API.
type RemoteError struct {
	Op     string
	Body   string
	Status int
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
}

// AuthError reports a missing, rejected, or undecodable credential.
type AuthError struct {
	Err     error
	Message string
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates an AuthError with a user-facing message.
func NewAuthError(message string, err error) error {
	return &AuthError{Message: message, Err: err}
}

// DecodeError reports a server record that could not be mapped onto a local type.
type DecodeError struct {
	Err      error
	Resource string
	Field    string
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: field %q: %v", e.Resource, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s: missing field %q", e.Resource, e.Field)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError is raised before any network call or state change.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a single field annotation.
func NewValidationError(message, field, reason string) error {
	ve := &ValidationError{Message: message}
	if field != "" {
		ve.Fields = map[string]string{field: reason}
	}
	return ve
}

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

// UserMessage returns the one-line text the terminal should show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	if errors.Is(err, ErrMissingCredential) {
		return "Please sign in"
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Body != "" {
			return fmt.Sprintf("Request failed (%d): %s", remoteErr.Status, remoteErr.Body)
		}
		return fmt.Sprintf("Request failed (%d)", remoteErr.Status)
	}

	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return "Could not reach the server"
	}

	return err.Error()
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Check for retryable error type
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}
