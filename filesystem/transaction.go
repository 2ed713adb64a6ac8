package filesystem

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/google/uuid"
)

// Action is a compensating step recorded by a Transaction. The set of actions
// is closed, every implementation lives in this package.
type Action interface {
	isAction()
}

// RestoreStaged moves the entry staged in the recycle bin under ID back into
// its original location.
type RestoreStaged struct {
	ID int64
}

// RestoreHandle marks a deleted item handle as live again.
type RestoreHandle struct {
	Item Item
}

// MoveBack moves an item back into the directory it was moved out of.
type MoveBack struct {
	Item   Item
	Parent *Directory
}

// DeleteHandle deletes an item that was created during the transaction.
type DeleteHandle struct {
	Item Item
}

func (RestoreStaged) isAction() {}
func (RestoreHandle) isAction() {}
func (MoveBack) isAction()      {}
func (DeleteHandle) isAction()  {}

// Transaction is an in-memory undo journal. While a transaction is active
// every destructive operation logs the action that reverses it, Rollback
// replays those actions newest first and Commit discards them and purges the
// recycle bin.
//
// Only one transaction can be active at a time and a Transaction is not safe
// for concurrent use.
type Transaction struct {
	bin     *RecycleBin
	id      string
	active  bool
	entries []Action
}

func newTransaction(bin *RecycleBin) *Transaction {
	return &Transaction{bin: bin}
}

func (t *Transaction) log() *log.Entry {
	return logger("transaction").WithField("transaction_id", t.id)
}

// ID returns the identifier of the active transaction, or of the last one
// that was started.
func (t *Transaction) ID() string {
	return t.id
}

// In reports whether a transaction is currently active.
func (t *Transaction) In() bool {
	return t.active
}

// Len returns the number of compensating actions recorded so far.
func (t *Transaction) Len() int {
	return len(t.entries)
}

// Begin starts a new transaction.
func (t *Transaction) Begin() error {
	if t.active {
		return newError(ErrCodeState, "begin", "", "transaction already started")
	}
	t.active = true
	t.entries = nil
	t.id = uuid.New().String()

	t.log().Debug("started transaction")
	return nil
}

// Log records a compensating action. Outside of a transaction this is a
// no-op, which is what lets every operation run the same code path whether or
// not a transaction is active.
func (t *Transaction) Log(a Action) {
	if !t.active {
		return
	}
	t.entries = append(t.entries, a)
}

// Commit ends the transaction, discards the journal and permanently removes
// everything that was staged in the recycle bin.
func (t *Transaction) Commit() error {
	if !t.active {
		return newError(ErrCodeState, "commit", "", "transaction was not started")
	}
	n := len(t.entries)
	// Staged content is about to be purged, handles deleted in this
	// transaction can no longer be restored.
	for _, a := range t.entries {
		if a, ok := a.(RestoreHandle); ok {
			a.Item.base().previousPath = ""
		}
	}
	t.active = false
	t.entries = nil

	if err := t.bin.Purge(); err != nil {
		return errors.WrapIf(err, "filesystem: commit: failed to purge recycle bin")
	}
	t.log().WithField("actions", n).Info("committed transaction")
	return nil
}

// Rollback ends the transaction and replays the journal in reverse order.
// The transaction is marked inactive before replaying so the compensating
// calls are not journaled themselves. Every action is attempted even if an
// earlier one failed, the failures are combined into the returned error.
func (t *Transaction) Rollback() error {
	if !t.active {
		return newError(ErrCodeState, "rollback", "", "transaction was not started")
	}
	t.active = false
	entries := t.entries
	t.entries = nil

	var errs error
	for i := len(entries) - 1; i >= 0; i-- {
		if err := t.apply(entries[i]); err != nil {
			t.log().WithField("action", fmt.Sprintf("%T", entries[i])).WithField("error", err).Warn("failed to apply compensating action")
			errs = errors.Append(errs, err)
		}
	}
	if errs != nil {
		return errors.WrapIf(errs, "filesystem: rollback: one or more actions could not be reversed")
	}

	t.log().WithField("actions", len(entries)).Info("rolled back transaction")
	return nil
}

func (t *Transaction) apply(a Action) error {
	switch a := a.(type) {
	case RestoreStaged:
		return t.bin.Restore(a.ID)
	case RestoreHandle:
		return a.Item.Restore()
	case MoveBack:
		_, err := a.Item.Move(a.Parent, false)
		return err
	case DeleteHandle:
		return a.Item.Delete()
	default:
		return newError(ErrCodeInvalidArgument, "rollback", "", fmt.Sprintf("unknown action %T", a))
	}
}
