package filesystem

import (
	"io"
	iofs "io/fs"
	"testing"

	"emperror.dev/errors"
	. "github.com/franela/goblin"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func TestFilesystem_Errors(t *testing.T) {
	g := Goblin(t)

	g.Describe("newError", func() {
		g.It("includes a stack trace for the error", func() {
			err := newError(ErrCodeState, "commit", "", "transaction was not started")

			_, ok := err.(stackTracer)
			g.Assert(ok).IsTrue()
			g.Assert(IsErrorCode(err, ErrCodeState)).IsTrue()
		})

		g.It("formats the operation and path into the message", func() {
			err := newError(ErrCodeAlreadyExists, "make file", "/tmp/foo", "")
			g.Assert(err.Error()).Equal("filesystem: make file: [/tmp/foo] already exists")
		})
	})

	g.Describe("wrapError", func() {
		g.It("properly wraps the underlying error cause", func() {
			underlying := io.EOF
			err := wrapError(ErrCodePrimitive, "copy", "/a", "/b", underlying)

			_, ok := err.(stackTracer)
			g.Assert(ok).IsTrue()

			_, ok = err.(*Error)
			g.Assert(ok).IsFalse()

			fserr, ok := errors.Unwrap(err).(*Error)
			g.Assert(ok).IsTrue()
			g.Assert(fserr.Unwrap()).Equal(underlying)
			g.Assert(errors.Is(err, io.EOF)).IsTrue()
			g.Assert(err.Error()).Equal("filesystem: copy: [/a] -> [/b] filesystem call failed: EOF")
		})
	})

	g.Describe("IsErrorCode", func() {
		g.It("finds the code through additional context", func() {
			err := errors.WrapIf(newError(ErrCodeNotFound, "drop", "/a", ""), "failed to stage entry")
			g.Assert(IsErrorCode(err, ErrCodeNotFound)).IsTrue()
			g.Assert(IsErrorCode(err, ErrCodePrimitive)).IsFalse()
		})

		g.It("returns false for errors of another type", func() {
			g.Assert(IsErrorCode(io.EOF, ErrCodeNotFound)).IsFalse()
			g.Assert(IsErrorCode(nil, ErrCodeNotFound)).IsFalse()
		})
	})

	g.Describe("Error.Is", func() {
		g.It("matches the standard io/fs errors", func() {
			g.Assert(errors.Is(newError(ErrCodeNotFound, "", "", ""), iofs.ErrNotExist)).IsTrue()
			g.Assert(errors.Is(newError(ErrCodeAlreadyExists, "", "", ""), iofs.ErrExist)).IsTrue()
			g.Assert(errors.Is(newError(ErrCodeInvalidArgument, "", "", ""), iofs.ErrInvalid)).IsTrue()
			g.Assert(errors.Is(newError(ErrCodeDenylistFile, "", "", ""), iofs.ErrPermission)).IsTrue()
			g.Assert(errors.Is(newError(ErrCodePrimitive, "", "", ""), iofs.ErrNotExist)).IsFalse()
		})
	})
}
