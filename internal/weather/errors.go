package weather

import (
	"errors"
	"fmt"
)

// Kind classifies every failure this package can return.
type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "upstream"
	}
}

var (
	// Sentinels for errors.Is; they match any *Error of the same Kind.
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAuth       = &Error{Kind: KindAuth, Message: "invalid api key"}
	ErrRateLimit  = &Error{Kind: KindRateLimit, Message: "rate limited"}
	ErrUpstream   = &Error{Kind: KindUpstream, Message: "upstream failure"}
)

// Error is the tagged error returned by the fetch layer. StatusCode is the
// upstream HTTP status when one was received, zero otherwise.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, defaulting to KindUpstream for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// StatusOf returns the upstream status code carried by err, if any.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(status int, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

func AuthError(status int, msg string) *Error {
	return &Error{Kind: KindAuth, StatusCode: status, Message: msg}
}

func RateLimitError(status int, msg string) *Error {
	return &Error{Kind: KindRateLimit, StatusCode: status, Message: msg}
}

func UpstreamError(status int, msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, StatusCode: status, Message: msg, Err: cause}
}
