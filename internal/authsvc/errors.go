package authsvc

import "fmt"

// Code is the protocol-visible error taxonomy: NotFound, Unauthenticated,
// or Internal. Transport errors (connection, codec, framing) are not
// represented here — they propagate unchanged from the transport.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInternal        Code = "INTERNAL"
)

// Error is a protocol-level failure: the named identifier/auth_id is
// unknown, the proof equations didn't hold, or an internal condition
// (poisoned lock, RNG exhaustion) occurred that must never be reported to
// the client as Unauthenticated.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message}
}

func internalf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}
