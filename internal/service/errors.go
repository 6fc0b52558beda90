package service

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below unwrap to these so callers can use
// errors.Is without caring about the details.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
)

// AuthErrorKind classifies authentication failures.
type AuthErrorKind int

const (
	InvalidCredentials AuthErrorKind = iota
	EmailInUse
)

// AuthError is returned by Authenticate and Register.
type AuthError struct {
	Kind  AuthErrorKind
	Email string
}

func (e *AuthError) Error() string {
	return e.Unwrap().Error()
}

func (e *AuthError) Unwrap() error {
	if e.Kind == EmailInUse {
		return ErrEmailInUse
	}
	return ErrInvalidCredentials
}

// NotFoundError reports a missing resource, e.g. Resource "property".
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError reports caller input the service refuses to accept.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
