package twocaptcha

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Solve, Report and Balance wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrTransport      = errors.New("transport error")
	ErrRemoteRejected = errors.New("task rejected by service")
	ErrRemoteFailed   = errors.New("task failed on service")
	ErrTimeout        = errors.New("task timed out")
	ErrSchemaMismatch = errors.New("unrecognized response shape")
	ErrInvalidInput   = errors.New("invalid task description")
	ErrReportFailed   = errors.New("report failed")
)

// Error describes a failed operation. Kind is one of the Err* sentinels
// above; Code and Message carry the service's error code and text when
// the service produced them.
type Error struct {
	Kind    error
	Op      string
	Code    string
	Message string
	TaskID  uint64
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	if e.TaskID != 0 {
		msg += fmt.Sprintf(" [task %d]", e.TaskID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func transportError(op string, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Err: err}
}

func schemaError(op string, format string, args ...any) error {
	return &Error{Kind: ErrSchemaMismatch, Op: op, Message: fmt.Sprintf(format, args...)}
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Op: "build", Message: fmt.Sprintf(format, args...)}
}
