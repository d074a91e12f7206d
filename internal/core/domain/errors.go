package domain

import "errors"

// ErrorKind classifies a domain failure so the transport layer can map it to
// a deterministic status code without inspecting message strings.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindUnprocessable ErrorKind = "unprocessable"
	KindInternal      ErrorKind = "internal"
)

// Error is a domain failure carrying an explicit kind and a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFoundError reports a missing or malformed target/report identifier.
func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// ConflictError reports a duplicate active report on the same target.
func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// UnprocessableError reports a violated moderation invariant.
func UnprocessableError(msg string) *Error {
	return &Error{Kind: KindUnprocessable, Message: msg}
}

// InternalError wraps an unexpected storage or broker failure behind a
// generic message; the real cause is logged at the boundary.
func InternalError(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
