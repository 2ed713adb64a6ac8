package filesystem

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/pterodactyl/transactfs/config"
	"github.com/pterodactyl/transactfs/internal/ufs"
)

// Filesystem ties together the platform driver, the recycle bin and the
// transaction journal. Every item handed out by a Filesystem holds a
// reference back to it, there is no global state.
//
// A Filesystem is not safe for concurrent use.
type Filesystem struct {
	driver   ufs.Driver
	bin      *RecycleBin
	tx       *Transaction
	denylist *ignore.GitIgnore
}

// New creates a new Filesystem using the platform driver and the settings
// from the given configuration.
func New(c *config.Configuration) (*Filesystem, error) {
	driver := ufs.NewDriver(ufs.Modes{
		File:      ufs.FileMode(c.Permissions.File),
		Directory: ufs.FileMode(c.Permissions.Directory),
	})
	return NewWithDriver(c, driver)
}

// NewWithDriver is like New but uses the provided driver for the platform
// specific calls.
func NewWithDriver(c *config.Configuration, driver ufs.Driver) (*Filesystem, error) {
	bin, err := NewRecycleBin(c.RecycleBin.GetRecycleBinDirectory(), driver)
	if err != nil {
		return nil, errors.WrapIf(err, "filesystem: failed to create recycle bin")
	}
	return &Filesystem{
		driver:   driver,
		bin:      bin,
		tx:       newTransaction(bin),
		denylist: ignore.CompileIgnoreLines(c.Protected...),
	}, nil
}

// Close rolls back any transaction that is still open and then purges the
// recycle bin. The Filesystem must not be used afterwards.
func (fs *Filesystem) Close() error {
	var errs error
	if fs.tx.In() {
		logger("filesystem").WithField("transaction_id", fs.tx.ID()).Warn("closing filesystem with an open transaction, rolling back")
		errs = errors.Append(errs, fs.tx.Rollback())
	}
	return errors.Combine(errs, fs.bin.Purge())
}

// Transaction returns the transaction journal of this filesystem.
func (fs *Filesystem) Transaction() *Transaction {
	return fs.tx
}

// RecycleBin returns the recycle bin deleted entries are staged in.
func (fs *Filesystem) RecycleBin() *RecycleBin {
	return fs.bin
}

// Driver returns the platform driver.
func (fs *Filesystem) Driver() ufs.Driver {
	return fs.driver
}

// Item resolves the entry at p into an item handle. A path resolving to a
// regular file, including through a link, is a File. Otherwise a link is a
// Link and a directory is a Directory.
func (fs *Filesystem) Item(p string) (Item, error) {
	abs, err := absPath(p)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(abs); err != nil {
		return nil, statError("item", abs, err)
	}
	st, serr := os.Stat(abs)
	switch {
	case serr == nil && st.Mode().IsRegular():
		return fs.newFile(abs)
	case fs.driver.IsLink(abs):
		return fs.newLink(abs)
	case serr == nil && st.IsDir():
		return fs.newDirectory(abs)
	}
	return nil, newError(ErrCodeInvalidArgument, "item", abs, "unsupported file type")
}

// File resolves p into a File handle.
func (fs *Filesystem) File(p string) (*File, error) {
	i, err := fs.Item(p)
	if err != nil {
		return nil, err
	}
	f, ok := i.(*File)
	if !ok {
		return nil, newError(ErrCodeInvalidArgument, "file", p, "not a regular file")
	}
	return f, nil
}

// Dir resolves p into a Directory handle.
func (fs *Filesystem) Dir(p string) (*Directory, error) {
	i, err := fs.Item(p)
	if err != nil {
		return nil, err
	}
	d, ok := i.(*Directory)
	if !ok {
		return nil, newError(ErrCodeInvalidArgument, "dir", p, "not a directory")
	}
	return d, nil
}

// Link resolves p into a Link handle.
func (fs *Filesystem) Link(p string) (*Link, error) {
	i, err := fs.Item(p)
	if err != nil {
		return nil, err
	}
	l, ok := i.(*Link)
	if !ok {
		return nil, newError(ErrCodeInvalidArgument, "link", p, "not a link")
	}
	return l, nil
}

// MakeFile creates an empty file at p. An entry already at p is only replaced
// when forced is true.
func (fs *Filesystem) MakeFile(p string, forced bool) (*File, error) {
	abs, err := fs.prepare("make file", p)
	if err != nil {
		return nil, err
	}
	id, staged, err := fs.stage("make file", abs, forced)
	if err != nil {
		return nil, err
	}
	if err := fs.driver.CreateEmptyFile(abs); err != nil {
		return nil, fs.unstage(wrapError(ErrCodePrimitive, "make file", abs, "", err), id, staged)
	}
	f, err := fs.newFile(abs)
	if err != nil {
		return nil, fs.unstage(fs.discard("make file", abs, err), id, staged)
	}

	fs.settle(id, staged)
	fs.tx.Log(DeleteHandle{Item: f})
	return f, nil
}

// MakeDir creates an empty directory at p. An entry already at p is only
// replaced when forced is true.
func (fs *Filesystem) MakeDir(p string, forced bool) (*Directory, error) {
	abs, err := fs.prepare("make dir", p)
	if err != nil {
		return nil, err
	}
	id, staged, err := fs.stage("make dir", abs, forced)
	if err != nil {
		return nil, err
	}
	if err := fs.driver.CreateEmptyDirectory(abs); err != nil {
		return nil, fs.unstage(wrapError(ErrCodePrimitive, "make dir", abs, "", err), id, staged)
	}
	d, err := fs.newDirectory(abs)
	if err != nil {
		return nil, fs.unstage(fs.discard("make dir", abs, err), id, staged)
	}

	fs.settle(id, staged)
	fs.tx.Log(DeleteHandle{Item: d})
	return d, nil
}

// MakeLink creates a link at p pointing at the target directory. An entry
// already at p is only replaced when forced is true.
func (fs *Filesystem) MakeLink(p string, target Item, forced bool) (*Link, error) {
	_, dir, err := targetDirectory("make link", target)
	if err != nil {
		return nil, err
	}
	abs, err := fs.prepare("make link", p)
	if err != nil {
		return nil, err
	}
	id, staged, err := fs.stage("make link", abs, forced)
	if err != nil {
		return nil, err
	}
	if err := os.Symlink(dir, abs); err != nil {
		return nil, fs.unstage(wrapError(ErrCodePrimitive, "make link", abs, dir, err), id, staged)
	}
	l, err := fs.newLink(abs)
	if err != nil {
		return nil, fs.unstage(fs.discard("make link", abs, err), id, staged)
	}

	fs.settle(id, staged)
	fs.tx.Log(DeleteHandle{Item: l})
	return l, nil
}

// prepare returns the absolute form of p after checking it against the
// denylist.
func (fs *Filesystem) prepare(op string, p string) (string, error) {
	abs, err := absPath(p)
	if err != nil {
		return "", err
	}
	if err := fs.guard(op, abs); err != nil {
		return "", err
	}
	return abs, nil
}

// stage moves an entry occupying p into the recycle bin so that something new
// can be created in its place. Nothing is staged if p is free. When p is
// occupied and forced is false an AlreadyExists error is returned.
func (fs *Filesystem) stage(op string, p string, forced bool) (int64, bool, error) {
	if _, err := os.Lstat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, wrapError(ErrCodePrimitive, op, p, "", err)
	}
	if !forced {
		return 0, false, newError(ErrCodeAlreadyExists, op, p, "")
	}
	id, err := fs.bin.Drop(p)
	if err != nil {
		return 0, false, errors.WrapIf(err, "filesystem: "+op+": failed to stage existing entry")
	}
	return id, true, nil
}

// settle finishes with an entry staged by a successful operation. Inside a
// transaction the entry stays in the recycle bin and is logged so a rollback
// puts it back, otherwise it is removed for good.
func (fs *Filesystem) settle(id int64, staged bool) {
	if !staged {
		return
	}
	if fs.tx.In() {
		fs.tx.Log(RestoreStaged{ID: id})
		return
	}
	if err := fs.bin.Release(id); err != nil {
		// The entry stays tracked by the bin and is removed when it is purged.
		logger("filesystem").WithField("id", id).WithField("error", err).Warn("failed to release staged entry")
	}
}

// discard removes the partial entry left at p by a failed operation. A
// failure to remove it is combined into err.
func (fs *Filesystem) discard(op string, p string, err error) error {
	if rerr := removeEntry(fs.driver, p); rerr != nil {
		return errors.Combine(err, errors.WrapIf(rerr, "filesystem: "+op+": failed to remove partial entry"))
	}
	return err
}

// unstage puts an entry staged by a failed operation back into place and
// returns the error that caused the operation to fail.
func (fs *Filesystem) unstage(err error, id int64, staged bool) error {
	if !staged {
		return err
	}
	if rerr := fs.bin.Restore(id); rerr != nil {
		logger("filesystem").WithField("id", id).WithField("error", rerr).Error("failed to restore staged entry after failed operation")
		return errors.Combine(err, rerr)
	}
	return err
}

func (fs *Filesystem) newFile(p string) (*File, error) {
	c, err := canonical(p)
	if err != nil {
		return nil, err
	}
	return &File{handle: handle{fs: fs, path: c}}, nil
}

func (fs *Filesystem) newDirectory(p string) (*Directory, error) {
	c, err := canonical(p)
	if err != nil {
		return nil, err
	}
	return &Directory{handle: handle{fs: fs, path: c}}, nil
}

// newLink returns a handle to the link at p. Only the parent is canonicalized
// so the handle keeps pointing at the link and not its target.
func (fs *Filesystem) newLink(p string) (*Link, error) {
	c, err := canonical(filepath.Dir(p))
	if err != nil {
		return nil, err
	}
	return &Link{handle: handle{fs: fs, path: filepath.Join(c, filepath.Base(p))}}, nil
}

// entry resolves p without following a link at p itself. This is what
// directory iteration uses so that recursive operations act on links and not
// on what they point at.
func (fs *Filesystem) entry(p string) (Item, error) {
	st, err := os.Lstat(p)
	if err != nil {
		return nil, statError("item", p, err)
	}
	switch {
	case st.Mode().IsRegular():
		return &File{handle: handle{fs: fs, path: p}}, nil
	case fs.driver.IsLink(p):
		return &Link{handle: handle{fs: fs, path: p}}, nil
	case st.IsDir():
		return &Directory{handle: handle{fs: fs, path: p}}, nil
	}
	return nil, newError(ErrCodeInvalidArgument, "item", p, "unsupported file type")
}

// sameKind returns a handle of the same kind as i for the entry at p.
func (fs *Filesystem) sameKind(i Item, p string) (Item, error) {
	switch i.(type) {
	case *Link:
		return fs.newLink(p)
	case *Directory:
		return fs.newDirectory(p)
	default:
		return fs.newFile(p)
	}
}
