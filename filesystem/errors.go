package filesystem

import (
	"fmt"
	iofs "io/fs"

	"emperror.dev/errors"
	"github.com/apex/log"
)

type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "E_NOTEXIST"
	ErrCodeAlreadyExists   ErrorCode = "E_EXIST"
	ErrCodeInvalidArgument ErrorCode = "E_INVALID"
	ErrCodePrimitive       ErrorCode = "E_PRIMITIVE"
	ErrCodeState           ErrorCode = "E_STATE"
	ErrCodeDenylistFile    ErrorCode = "E_DENYLIST"
)

// Error is the error type returned by every operation in this package. It
// carries the kind of failure, the operation being attempted, the paths
// involved and the underlying cause, if any.
type Error struct {
	code ErrorCode
	// The operation that was being performed, e.g. "copy" or "drop".
	op string
	// The path of the entry the operation was performed on.
	path string
	// The secondary path involved, e.g. the destination of a copy.
	target string
	// A human readable description of what went wrong.
	msg string
	err error
}

// newError returns a new error instance with a stack trace attached, recording
// the operation and path it occurred on.
func newError(code ErrorCode, op string, path string, msg string) error {
	return errors.WithStack(&Error{code: code, op: op, path: path, msg: msg})
}

// wrapError is like newError but records the underlying cause.
func wrapError(code ErrorCode, op string, path string, target string, err error) error {
	return errors.WithStack(&Error{code: code, op: op, path: path, target: target, err: err})
}

// Code returns the ErrorCode for this specific error instance.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Path returns the path of the entry the failing operation was acting on.
func (e *Error) Path() string {
	return e.path
}

// Error returns a human-readable error string to identify the Error by.
func (e *Error) Error() string {
	var s string
	switch e.code {
	case ErrCodeNotFound:
		s = "does not exist"
	case ErrCodeAlreadyExists:
		s = "already exists"
	case ErrCodeInvalidArgument:
		s = "invalid argument"
	case ErrCodePrimitive:
		s = "filesystem call failed"
	case ErrCodeState:
		s = "invalid state"
	case ErrCodeDenylistFile:
		s = "path is protected by the denylist"
	default:
		s = "unknown error"
	}
	if e.msg != "" {
		s = e.msg
	}
	out := "filesystem: "
	if e.op != "" {
		out += e.op + ": "
	}
	if e.path != "" {
		out += fmt.Sprintf("[%s] ", e.path)
	}
	if e.target != "" {
		out += fmt.Sprintf("-> [%s] ", e.target)
	}
	out += s
	if e.err != nil {
		out += ": " + e.err.Error()
	}
	return out
}

// Unwrap returns the underlying cause of this error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Is allows the error kinds to be matched against the standard io/fs errors
// so callers can use errors.Is(err, fs.ErrNotExist) and friends.
func (e *Error) Is(target error) bool {
	switch target {
	case iofs.ErrNotExist:
		return e.code == ErrCodeNotFound
	case iofs.ErrExist:
		return e.code == ErrCodeAlreadyExists
	case iofs.ErrInvalid:
		return e.code == ErrCodeInvalidArgument
	case iofs.ErrPermission:
		return e.code == ErrCodeDenylistFile
	}
	return false
}

// IsErrorCode checks if "err" is a filesystem Error type. If so, it will then
// drop in and check that the error code is the same as the provided ErrorCode
// passed in "code".
func IsErrorCode(err error, code ErrorCode) bool {
	var fserr *Error
	if errors.As(err, &fserr) {
		return fserr.code == code
	}
	return false
}

// logger returns a logger with the subsystem field set.
func logger(subsystem string) *log.Entry {
	return log.WithField("subsystem", subsystem)
}
