package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error the registry returns to callers. All
// kinds are local, synchronous and recoverable; the HTTP layer maps each
// kind to a status code.
type ErrorKind string

const (
	KindUnauthorized        ErrorKind = "unauthorized"
	KindForbidden           ErrorKind = "forbidden"
	KindValidation          ErrorKind = "validation_error"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindInvalidTransfer     ErrorKind = "invalid_transfer"
	KindLimitExceeded       ErrorKind = "limit_exceeded"
)

// RegistryError carries an error kind plus a human-readable message.
type RegistryError struct {
	Kind    ErrorKind
	Message string
}

func (e *RegistryError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, &RegistryError{Kind: k}) match on kind alone.
func (e *RegistryError) Is(target error) bool {
	var re *RegistryError
	if !errors.As(target, &re) {
		return false
	}
	return re.Kind == e.Kind && (re.Message == "" || re.Message == e.Message)
}

func registryErrorf(kind ErrorKind, format string, args ...interface{}) error {
	return &RegistryError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errUnauthorized(format string, args ...interface{}) error {
	return registryErrorf(KindUnauthorized, format, args...)
}

func errForbidden(format string, args ...interface{}) error {
	return registryErrorf(KindForbidden, format, args...)
}

func errValidation(format string, args ...interface{}) error {
	return registryErrorf(KindValidation, format, args...)
}

func errInsufficientBalance(format string, args ...interface{}) error {
	return registryErrorf(KindInsufficientBalance, format, args...)
}

func errNotFound(format string, args ...interface{}) error {
	return registryErrorf(KindNotFound, format, args...)
}

func errInvalidTransition(format string, args ...interface{}) error {
	return registryErrorf(KindInvalidTransition, format, args...)
}

func errInvalidTransfer(format string, args ...interface{}) error {
	return registryErrorf(KindInvalidTransfer, format, args...)
}

func errLimitExceeded(format string, args ...interface{}) error {
	return registryErrorf(KindLimitExceeded, format, args...)
}

// KindOf extracts the error kind, or "" for non-registry errors.
func KindOf(err error) ErrorKind {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
