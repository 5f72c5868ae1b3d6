// Package apperr is the discriminated error type shared by the application services.
// The HTTP boundary maps Kind to a status code; services never pick status codes themselves.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAccessDenied
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Validation reports caller-correctable input. field may be empty when the rule is not tied to one field.
func Validation(field, rule string) *Error {
	e := &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "invalid request"}
	if field != "" {
		e.Message = fmt.Sprintf("invalid %s", field)
		e.Details = map[string]any{field: rule}
	} else if rule != "" {
		e.Message = rule
	}
	return e
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Code: "ACCESS_DENIED", Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// InvalidCredentials is deliberately uninformative: it never says which part of the login was wrong.
func InvalidCredentials() *Error {
	return &Error{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "invalid credentials"}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
