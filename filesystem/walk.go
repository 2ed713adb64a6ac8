package filesystem

import (
	"os"

	"emperror.dev/errors"
	"github.com/karrick/godirwalk"

	"github.com/pterodactyl/transactfs/internal/ufs"
)

// removeEntry permanently removes whatever exists at p. Files are unlinked,
// links are removed with the platform driver so their targets are never
// touched, and directories are walked depth-first and removed after their
// contents. A missing entry is not an error.
func removeEntry(driver ufs.Driver, p string) error {
	st, err := os.Lstat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.WithStack(err)
	}
	switch {
	case st.Mode().IsRegular():
		return errors.WithStack(os.Remove(p))
	case driver.IsLink(p):
		return errors.WithStack(driver.RemoveLink(p))
	case st.IsDir():
		return removeTree(driver, p)
	default:
		return errors.WithStack(os.Remove(p))
	}
}

// removeTree removes the directory at root and everything beneath it. This is
// best-effort: an entry that cannot be removed is skipped and the walk keeps
// going, every failure is combined into the returned error.
func removeTree(driver ufs.Driver, root string) error {
	var errs error
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(p string, de *godirwalk.Dirent) error {
			// Do not follow symlinks, remove the link itself. The walker will
			// not descend into it since FollowSymbolicLinks is not set.
			if de.IsSymlink() {
				return driver.RemoveLink(p)
			}
			// Directories are removed once their children have been handled.
			if de.IsDir() {
				return nil
			}
			return os.Remove(p)
		},
		PostChildrenCallback: func(p string, _ *godirwalk.Dirent) error {
			return os.Remove(p)
		},
		ErrorCallback: func(p string, err error) godirwalk.ErrorAction {
			errs = errors.Append(errs, errors.WithMessagef(err, "failed to remove %s", p))
			return godirwalk.SkipNode
		},
	})
	return errors.Combine(errs, errors.WithStack(err))
}
