// Package errors defines the typed failures surfaced by the money-movement core.
// Every error returned across a service boundary is a *DomainError carrying a
// Kind, which the request layer maps to a response status.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindState             Kind = "STATE"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindLimitExceeded     Kind = "LIMIT_EXCEEDED"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindInternal          Kind = "INTERNAL"
)

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches on Code so wrapped copies of a sentinel still compare equal to it.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e with err attached as the cause.
func (e *DomainError) Wrap(err error) *DomainError {
	c := *e
	c.Err = err
	return &c
}

// Withf returns a copy of e with a formatted message.
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func New(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *DomainError {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *DomainError {
	return New(KindNotFound, code, message)
}

func State(code, message string) *DomainError {
	return New(KindState, code, message)
}

func LimitExceeded(code, message string) *DomainError {
	return New(KindLimitExceeded, code, message)
}

// Internal wraps an unexpected failure, typically from persistence.
func Internal(err error) *DomainError {
	return ErrInternal.Wrap(err)
}

// KindOf reports the Kind of err. Errors that are not DomainErrors are internal.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsDomain returns err as a *DomainError, wrapping foreign errors as internal.
func AsDomain(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return de
	}
	return Internal(err)
}

// Is and As re-export the standard library helpers for callers importing this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
