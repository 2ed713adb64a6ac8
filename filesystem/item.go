package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
)

// Item is a handle to a filesystem entry. A handle is live while it points at
// an existing path and deleted once the entry has been removed through it.
// Deleting an item within a transaction keeps the old path around so the
// handle can be restored if the transaction is rolled back.
//
// The set of item kinds is closed: *File, *Directory and *Link.
type Item interface {
	// Path returns the canonical absolute path of the entry, or an error if
	// the handle has been deleted.
	Path() (string, error)
	IsFile() bool
	IsDir() bool
	IsLink() bool
	// Delete removes the entry. Inside a transaction the entry is staged in
	// the recycle bin instead of being removed.
	Delete() error
	// Restore marks a handle deleted within a transaction as live again. It
	// does not touch the disk, the staged entry is restored separately.
	Restore() error
	// Copy copies the entry into the target directory and returns a handle to
	// the copy. An existing entry with the same name is only replaced when
	// forced is true.
	Copy(target Item, forced bool) (Item, error)
	// Move moves the entry into the target directory. The same handle is
	// returned and now points at the new location.
	Move(target Item, forced bool) (Item, error)
	Parent() (*Directory, error)
	FileName() string
	BaseName() string
	Extension() string

	base() *handle
	copyTo(dst string) error
	remove() error
}

// handle is the state shared by every item kind.
type handle struct {
	fs           *Filesystem
	path         string
	previousPath string
}

func (h *handle) base() *handle {
	return h
}

func (h *handle) Path() (string, error) {
	if h.path == "" {
		return "", newError(ErrCodeNotFound, "path", h.previousPath, "item has been deleted")
	}
	return h.path, nil
}

func (h *handle) Restore() error {
	if h.path != "" {
		return newError(ErrCodeState, "restore", h.path, "item was not deleted")
	}
	if h.previousPath == "" {
		return newError(ErrCodeState, "restore", "", "item has no previous location")
	}
	h.path = h.previousPath
	h.previousPath = ""
	return nil
}

func (h *handle) Parent() (*Directory, error) {
	p, err := h.Path()
	if err != nil {
		return nil, err
	}
	return h.fs.Dir(filepath.Dir(p))
}

// BaseName returns the final element of the path, or an empty string for a
// deleted handle.
func (h *handle) BaseName() string {
	if h.path == "" {
		return ""
	}
	return filepath.Base(h.path)
}

// FileName returns the final element of the path without its extension.
func (h *handle) FileName() string {
	b := h.BaseName()
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// Extension returns the extension of the final path element without the
// leading dot.
func (h *handle) Extension() string {
	return strings.TrimPrefix(filepath.Ext(h.BaseName()), ".")
}

// targetDirectory ensures that the target of a copy, move or link is a live
// directory handle and returns its path.
func targetDirectory(op string, target Item) (*Directory, string, error) {
	d, ok := target.(*Directory)
	if !ok || d == nil {
		return nil, "", newError(ErrCodeInvalidArgument, op, "", "target must be a directory")
	}
	p, err := d.Path()
	if err != nil {
		return nil, "", newError(ErrCodeInvalidArgument, op, d.previousPath, "target directory has been deleted")
	}
	return d, p, nil
}

// within reports whether p is root or lies beneath it.
func within(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

// deleteItem removes the entry behind self. Within a transaction the entry is
// dropped into the recycle bin and the actions that undo the delete are
// logged, otherwise it is removed from the disk.
func deleteItem(self Item) error {
	h := self.base()
	p, err := h.Path()
	if err != nil {
		return err
	}
	if err := h.fs.guard("delete", p); err != nil {
		return err
	}

	if h.fs.tx.In() {
		id, err := h.fs.bin.Drop(p)
		if err != nil {
			return errors.WrapIf(err, "filesystem: delete: failed to stage entry")
		}
		h.fs.tx.Log(RestoreStaged{ID: id})
		h.fs.tx.Log(RestoreHandle{Item: self})
		h.previousPath = p
	} else {
		if err := self.remove(); err != nil {
			return err
		}
		h.previousPath = ""
	}
	h.path = ""
	return nil
}

// copyItem copies the entry behind self into the target directory.
//
// Any entry already occupying the destination is staged first. If the copy
// fails the partial destination is removed and the staged entry is put back,
// so a failed copy leaves the disk as it was.
func copyItem(self Item, target Item, forced bool) (Item, error) {
	h := self.base()
	src, err := h.Path()
	if err != nil {
		return nil, err
	}
	_, dir, err := targetDirectory("copy", target)
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if dst == src {
		return nil, newError(ErrCodeInvalidArgument, "copy", src, "cannot copy an item onto itself")
	}
	if within(dir, src) {
		return nil, newError(ErrCodeInvalidArgument, "copy", src, "cannot copy a directory into itself")
	}
	if err := h.fs.guard("copy", dst); err != nil {
		return nil, err
	}

	id, staged, err := h.fs.stage("copy", dst, forced)
	if err != nil {
		return nil, err
	}
	if err := self.copyTo(dst); err != nil {
		err = wrapError(ErrCodePrimitive, "copy", src, dst, err)
		return nil, h.fs.unstage(h.fs.discard("copy", dst, err), id, staged)
	}
	item, err := h.fs.sameKind(self, dst)
	if err != nil {
		return nil, h.fs.unstage(h.fs.discard("copy", dst, err), id, staged)
	}

	h.fs.settle(id, staged)
	h.fs.tx.Log(DeleteHandle{Item: item})
	return item, nil
}

// moveItem renames the entry behind self into the target directory and points
// the handle at its new location.
func moveItem(self Item, target Item, forced bool) (Item, error) {
	h := self.base()
	src, err := h.Path()
	if err != nil {
		return nil, err
	}
	_, dir, err := targetDirectory("move", target)
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if dst == src {
		return nil, newError(ErrCodeInvalidArgument, "move", src, "cannot move an item onto itself")
	}
	if within(dir, src) {
		return nil, newError(ErrCodeInvalidArgument, "move", src, "cannot move a directory into itself")
	}
	if err := h.fs.guard("move", src); err != nil {
		return nil, err
	}
	if err := h.fs.guard("move", dst); err != nil {
		return nil, err
	}
	parent, err := h.fs.Dir(filepath.Dir(src))
	if err != nil {
		return nil, err
	}

	id, staged, err := h.fs.stage("move", dst, forced)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(src, dst); err != nil {
		return nil, h.fs.unstage(wrapError(ErrCodePrimitive, "move", src, dst, err), id, staged)
	}
	h.path = dst

	h.fs.settle(id, staged)
	h.fs.tx.Log(MoveBack{Item: self, Parent: parent})
	return self, nil
}
