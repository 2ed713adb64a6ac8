package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"

	"github.com/pterodactyl/transactfs/internal/ufs"
)

// binSequence makes the process UID unique even when several bins are
// created within the same clock tick.
var binSequence atomic.Int64

// RecycleBin is a private staging area for deleted entries. Dropping an entry
// renames it into the staging folder and hands back an id which can later be
// used to move it back into place. Nothing dropped into the bin is permanently
// removed until Release or Purge is called.
//
// A RecycleBin is not safe for concurrent use.
type RecycleBin struct {
	folder     string
	processUID string
	driver     ufs.Driver

	items  map[int64]string
	lastID int64
}

// NewRecycleBin returns a new recycle bin that stages entries inside folder.
// When folder is empty the system temporary directory is used. The folder
// must exist, be a directory and be writable.
func NewRecycleBin(folder string, driver ufs.Driver) (*RecycleBin, error) {
	if folder == "" {
		folder = os.TempDir()
	}
	st, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, wrapError(ErrCodeInvalidArgument, "recycle bin", folder, "", err)
		}
		return nil, wrapError(ErrCodePrimitive, "recycle bin", folder, "", err)
	}
	if !st.IsDir() {
		return nil, newError(ErrCodeInvalidArgument, "recycle bin", folder, "staging folder is not a directory")
	}
	// Probe the folder, a read-only staging area would only surface once the
	// first delete is attempted.
	probe, err := os.CreateTemp(folder, ".transactfs-probe-")
	if err != nil {
		return nil, wrapError(ErrCodeInvalidArgument, "recycle bin", folder, "", errors.WithMessage(err, "staging folder is not writable"))
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, wrapError(ErrCodePrimitive, "recycle bin", folder, "", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return &RecycleBin{
		folder:     abs,
		processUID: newProcessUID(),
		driver:     driver,
		items:      make(map[int64]string),
	}, nil
}

// newProcessUID returns a timestamp derived string that identifies the staged
// entries belonging to one recycle bin instance.
func newProcessUID() string {
	now := time.Now()
	return fmt.Sprintf("%d-%09d-%d-%d", now.Unix(), now.Nanosecond(), os.Getpid(), binSequence.Add(1))
}

// Folder returns the directory staged entries are kept in.
func (rb *RecycleBin) Folder() string {
	return rb.folder
}

// Len returns the number of entries currently staged.
func (rb *RecycleBin) Len() int {
	return len(rb.items)
}

// Staged returns the original path of the entry staged under id.
func (rb *RecycleBin) Staged(id int64) (string, bool) {
	p, ok := rb.items[id]
	return p, ok
}

// stagedPath returns the deterministic location for the given id.
func (rb *RecycleBin) stagedPath(id int64) string {
	return filepath.Join(rb.folder, rb.processUID+"-"+strconv.FormatInt(id, 10))
}

func (rb *RecycleBin) log(id int64, p string) *log.Entry {
	return logger("recycle_bin").WithFields(log.Fields{"id": id, "path": p})
}

// Drop moves the entry at p into the staging folder and returns the id it was
// staged under. Either the entry is fully staged and an id is returned, or
// nothing changed and an error is returned.
func (rb *RecycleBin) Drop(p string) (int64, error) {
	if _, err := os.Lstat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, wrapError(ErrCodeNotFound, "drop", p, "", err)
		}
		return 0, wrapError(ErrCodePrimitive, "drop", p, "", err)
	}

	// The counter only advances once the rename went through, but since it
	// never goes backwards an id is never handed out twice.
	id := rb.lastID + 1
	staged := rb.stagedPath(id)
	if err := os.Rename(p, staged); err != nil {
		return 0, wrapError(ErrCodePrimitive, "drop", p, staged, err)
	}
	rb.lastID = id
	rb.items[id] = p

	rb.log(id, p).WithField("staged", staged).Debug("staged entry in recycle bin")
	return id, nil
}

// Restore moves the entry staged under id back to its original location and
// forgets the id. If the original location is occupied, or the rename fails,
// the id stays valid and the staged entry is left untouched so the caller can
// retry.
func (rb *RecycleBin) Restore(id int64) error {
	p, ok := rb.items[id]
	if !ok {
		return newError(ErrCodeNotFound, "restore", "", fmt.Sprintf("recycle bin id %d is not known", id))
	}
	if _, err := os.Lstat(p); err == nil {
		return newError(ErrCodeAlreadyExists, "restore", p, "original location is occupied")
	}
	staged := rb.stagedPath(id)
	if err := os.Rename(staged, p); err != nil {
		return wrapError(ErrCodePrimitive, "restore", staged, p, err)
	}
	delete(rb.items, id)

	rb.log(id, p).Debug("restored entry from recycle bin")
	return nil
}

// Resource opens the entry staged under id using the given os.O_* flags. The
// caller is responsible for closing the returned file.
func (rb *RecycleBin) Resource(id int64, flag int) (*os.File, error) {
	if _, ok := rb.items[id]; !ok {
		return nil, newError(ErrCodeNotFound, "resource", "", fmt.Sprintf("recycle bin id %d is not known", id))
	}
	staged := rb.stagedPath(id)
	f, err := os.OpenFile(staged, flag, 0)
	if err != nil {
		return nil, wrapError(ErrCodePrimitive, "resource", staged, "", err)
	}
	return f, nil
}

// Release permanently removes the entry staged under id and forgets the id.
// This is used once the operation that staged the entry completed outside of
// a transaction and the staged copy is no longer needed.
func (rb *RecycleBin) Release(id int64) error {
	p, ok := rb.items[id]
	if !ok {
		return newError(ErrCodeNotFound, "release", "", fmt.Sprintf("recycle bin id %d is not known", id))
	}
	if err := removeEntry(rb.driver, rb.stagedPath(id)); err != nil {
		return wrapError(ErrCodePrimitive, "release", p, rb.stagedPath(id), err)
	}
	delete(rb.items, id)

	rb.log(id, p).Debug("released entry from recycle bin")
	return nil
}

// Purge permanently removes every staged entry and clears the id table. This
// is best-effort, a failure to remove one entry is logged and returned but
// does not stop the remaining entries from being removed. Purging an empty
// bin is a no-op.
func (rb *RecycleBin) Purge() error {
	if len(rb.items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(rb.items))
	for id := range rb.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var errs error
	for _, id := range ids {
		if err := removeEntry(rb.driver, rb.stagedPath(id)); err != nil {
			rb.log(id, rb.items[id]).WithField("error", err).Warn("failed to purge staged entry from recycle bin")
			errs = errors.Append(errs, wrapError(ErrCodePrimitive, "purge", rb.items[id], rb.stagedPath(id), err))
		}
	}
	rb.items = make(map[int64]string)

	logger("recycle_bin").WithField("entries", len(ids)).Debug("purged recycle bin")
	return errs
}
