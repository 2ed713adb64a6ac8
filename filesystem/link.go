package filesystem

import (
	"os"
)

// Link is a handle to a symbolic link. The path of a link is the location of
// the link itself and never the location it points at. Deleting, moving or
// copying a link acts on the link and leaves the target alone.
type Link struct {
	handle
}

func (l *Link) IsFile() bool { return false }
func (l *Link) IsDir() bool  { return false }
func (l *Link) IsLink() bool { return true }

func (l *Link) Delete() error {
	return deleteItem(l)
}

func (l *Link) Copy(target Item, forced bool) (Item, error) {
	return copyItem(l, target, forced)
}

func (l *Link) Move(target Item, forced bool) (Item, error) {
	return moveItem(l, target, forced)
}

// Target returns the location the link points at, as stored in the link.
func (l *Link) Target() (string, error) {
	p, err := l.Path()
	if err != nil {
		return "", err
	}
	t, err := os.Readlink(p)
	if err != nil {
		return "", wrapError(ErrCodePrimitive, "readlink", p, "", err)
	}
	return t, nil
}

func (l *Link) remove() error {
	if err := l.fs.driver.RemoveLink(l.path); err != nil {
		return wrapError(ErrCodePrimitive, "delete", l.path, "", err)
	}
	return nil
}

// copyTo creates a new link at dst pointing at the same target.
func (l *Link) copyTo(dst string) error {
	t, err := os.Readlink(l.path)
	if err != nil {
		return err
	}
	return os.Symlink(t, dst)
}
