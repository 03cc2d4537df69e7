// Package fserr defines the error taxonomy shared across filesieve's
// core packages. It follows the teacher's CoordinationError shape: a
// small closed set of kinds, each carrying a message, optional details,
// and a retryability hint, rather than ad hoc fmt.Errorf chains.
package fserr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories the core returns to callers.
type Kind string

const (
	Database        Kind = "DATABASE"
	IO              Kind = "IO"
	InvalidQuery    Kind = "INVALID_QUERY"
	PathNotFound    Kind = "PATH_NOT_FOUND"
	PermissionDenied Kind = "PERMISSION_DENIED"
	IndexCorrupted  Kind = "INDEX_CORRUPTED"
	Configuration   Kind = "CONFIGURATION"
	Pool            Kind = "POOL"
	Watch           Kind = "WATCH"
	Encoding        Kind = "ENCODING"
	Parse           Kind = "PARSE"
	Cancelled       Kind = "CANCELLED"
	NotInitialized  Kind = "NOT_INITIALIZED"
)

// Error is the concrete error value returned by every core operation.
type Error struct {
	Kind      Kind
	Message   string
	Details   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, fserr.KindDatabase) etc. match any *Error of
// the same Kind: the Kind* sentinels below are *Error values with no
// message.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

func retryableByDefault(k Kind) bool {
	switch k {
	case Pool, Watch, Database:
		return true
	default:
		return false
	}
}

// New builds an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryableByDefault(kind)}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap builds an Error of the given kind that records cause as its
// wrapped error and details string.
func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.Cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// WithDetails returns a copy of e with Details set.
func (e *Error) WithDetails(details string) *Error {
	n := *e
	n.Details = details
	return &n
}

// sentinel kind matchers, for errors.Is(err, fserr.KindDatabase) style checks.
func kindSentinel(k Kind) *Error { return &Error{Kind: k} }

var (
	KindDatabase        = kindSentinel(Database)
	KindIO              = kindSentinel(IO)
	KindInvalidQuery    = kindSentinel(InvalidQuery)
	KindPathNotFound    = kindSentinel(PathNotFound)
	KindPermissionDenied = kindSentinel(PermissionDenied)
	KindIndexCorrupted  = kindSentinel(IndexCorrupted)
	KindConfiguration   = kindSentinel(Configuration)
	KindPool            = kindSentinel(Pool)
	KindWatch           = kindSentinel(Watch)
	KindEncoding        = kindSentinel(Encoding)
	KindParse           = kindSentinel(Parse)
	KindCancelled       = kindSentinel(Cancelled)
	KindNotInitialized  = kindSentinel(NotInitialized)
)

// Of reports the Kind of err if it (or something it wraps) is an *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
