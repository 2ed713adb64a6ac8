package filesystem

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
)

// guard checks the given path against the protected path denylist. If it
// matches an Error is returned, otherwise nil is returned.
func (fs *Filesystem) guard(op string, p string) error {
	if fs.denylist != nil && fs.denylist.MatchesPath(p) {
		return newError(ErrCodeDenylistFile, op, p, "")
	}
	return nil
}

// IsProtected reports whether p matches one of the protected path patterns.
func (fs *Filesystem) IsProtected(p string) bool {
	abs, err := absPath(p)
	if err != nil {
		return false
	}
	return fs.guard("", abs) != nil
}

// absPath returns a cleaned absolute version of p.
func absPath(p string) (string, error) {
	if p == "" {
		return "", newError(ErrCodeInvalidArgument, "resolve", "", "path is empty")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", wrapError(ErrCodePrimitive, "resolve", p, "", err)
	}
	return abs, nil
}

// canonical resolves every link in p and returns the result.
func canonical(p string) (string, error) {
	c, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", statError("resolve", p, err)
	}
	return c, nil
}

// statError converts an error from a stat style call into an Error with the
// matching code.
func statError(op string, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return wrapError(ErrCodeNotFound, op, p, "", err)
	}
	return wrapError(ErrCodePrimitive, op, p, "", err)
}
