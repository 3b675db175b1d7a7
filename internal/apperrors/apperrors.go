// Package apperrors provides the categorized error taxonomy shared by the domain services.
package apperrors

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindUnknown represents an uncategorized (internal) error.
	KindUnknown Kind = "UNKNOWN"
	// KindNotFound means a referenced expense, participant or user does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindPermissionDenied means the actor lacks the required capability.
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	// KindValidation means the input is structurally invalid or the transition is not allowed.
	KindValidation Kind = "VALIDATION"
	// KindConflict means the request duplicates existing state.
	KindConflict Kind = "CONFLICT"
	// KindUnauthenticated means no valid actor identity was supplied.
	KindUnauthenticated Kind = "UNAUTHENTICATED"
)

// Error is a categorized domain error. Message is user-facing and kept stable.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same kind and message, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that keeps cause in its chain.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func PermissionDenied(format string, args ...any) *Error {
	return New(KindPermissionDenied, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// GetKind extracts the kind from any error.
// Returns KindUnknown if the error is not a domain error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

func IsNotFound(err error) bool         { return IsKind(err, KindNotFound) }
func IsPermissionDenied(err error) bool { return IsKind(err, KindPermissionDenied) }
func IsValidation(err error) bool       { return IsKind(err, KindValidation) }
func IsConflict(err error) bool         { return IsKind(err, KindConflict) }

// Message returns the user-facing message of a domain error, or a generic one otherwise.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}

// ConnectCode maps error kinds to Connect status codes.
func (k Kind) ConnectCode() connect.Code {
	switch k {
	case KindNotFound:
		return connect.CodeNotFound
	case KindPermissionDenied:
		return connect.CodePermissionDenied
	case KindValidation:
		return connect.CodeInvalidArgument
	case KindConflict:
		return connect.CodeAlreadyExists
	case KindUnauthenticated:
		return connect.CodeUnauthenticated
	default:
		return connect.CodeInternal
	}
}

// ToConnect converts a domain error for client responses.
// Uncategorized errors are hidden behind a generic internal message.
func ToConnect(err error) *connect.Error {
	if err == nil {
		return nil
	}
	kind := GetKind(err)
	if kind == KindUnknown {
		return connect.NewError(connect.CodeInternal, errors.New(Message(err)))
	}
	return connect.NewError(kind.ConnectCode(), errors.New(Message(err)))
}
