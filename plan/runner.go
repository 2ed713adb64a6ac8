package plan

import (
	"context"
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"

	"github.com/pterodactyl/transactfs/filesystem"
)

// Report describes the outcome of running a plan.
type Report struct {
	// The id of the transaction the plan ran in, empty if it did not use one.
	TransactionID string
	// Number of steps that completed.
	Applied int
	// Total number of steps in the plan.
	Total int
	// Number of bytes written by write and append steps.
	Written int64
	// Whether the applied steps were rolled back, either because a step
	// failed or because this was a dry run.
	RolledBack bool
}

type Runner struct {
	fs     *filesystem.Filesystem
	dryRun bool
}

// NewRunner returns a runner applying plans to fs. A dry run always runs in a
// transaction and rolls it back once every step went through, which checks
// the plan against the disk without leaving any changes behind.
func NewRunner(fs *filesystem.Filesystem, dryRun bool) *Runner {
	return &Runner{fs: fs, dryRun: dryRun}
}

// Run applies every step of the plan in order and stops at the first step
// that fails. When the plan runs in a transaction the steps applied before
// the failure are rolled back.
func (r *Runner) Run(ctx context.Context, p *Plan) (*Report, error) {
	tx := r.fs.Transaction()
	report := &Report{Total: len(p.Steps)}

	if p.Transaction || r.dryRun {
		if err := tx.Begin(); err != nil {
			return report, errors.WrapIf(err, "plan: failed to begin transaction")
		}
		report.TransactionID = tx.ID()
	}

	for i, s := range p.Steps {
		l := log.WithFields(log.Fields{"step": i + 1, "op": s.Op, "path": s.Path})
		if s.Target != "" {
			l = l.WithField("target", s.Target)
		}

		err := ctx.Err()
		if err == nil {
			err = r.apply(s, report)
		}
		if err != nil {
			l.WithField("error", err).Error("failed to apply plan step")
			err = errors.WrapIf(err, fmt.Sprintf("plan: step %d (%s %s) failed", i+1, s.Op, s.Path))
			if tx.In() {
				if rerr := tx.Rollback(); rerr != nil {
					err = errors.Combine(err, rerr)
				}
				report.RolledBack = true
			}
			return report, err
		}
		report.Applied++
		l.Debug("applied plan step")
	}

	if !tx.In() {
		return report, nil
	}
	if r.dryRun {
		report.RolledBack = true
		return report, errors.WrapIf(tx.Rollback(), "plan: failed to roll back dry run")
	}
	return report, errors.WrapIf(tx.Commit(), "plan: failed to commit transaction")
}

func (r *Runner) apply(s Step, report *Report) error {
	switch s.Op {
	case OpMkdir:
		_, err := r.fs.MakeDir(s.Path, s.Forced)
		return err
	case OpTouch:
		_, err := r.fs.MakeFile(s.Path, s.Forced)
		return err
	case OpWrite, OpAppend:
		f, err := r.file(s.Path)
		if err != nil {
			return err
		}
		var n int64
		if s.Op == OpAppend {
			n, err = f.Append(strings.NewReader(s.Content))
		} else {
			n, err = f.Write(strings.NewReader(s.Content))
		}
		report.Written += n
		return err
	case OpCopy, OpMove:
		item, err := r.fs.Item(s.Path)
		if err != nil {
			return err
		}
		dir, err := r.fs.Dir(s.Target)
		if err != nil {
			return err
		}
		if s.Op == OpMove {
			_, err = item.Move(dir, s.Forced)
		} else {
			_, err = item.Copy(dir, s.Forced)
		}
		return err
	case OpLink:
		dir, err := r.fs.Dir(s.Target)
		if err != nil {
			return err
		}
		_, err = r.fs.MakeLink(s.Path, dir, s.Forced)
		return err
	case OpDelete:
		item, err := r.fs.Item(s.Path)
		if err != nil {
			return err
		}
		return item.Delete()
	}
	return errors.WithMessagef(ErrInvalidPlan, "unknown operation %q", s.Op)
}

// file returns the file at p, creating it first if it does not exist.
func (r *Runner) file(p string) (*filesystem.File, error) {
	f, err := r.fs.File(p)
	if err == nil {
		return f, nil
	}
	if !filesystem.IsErrorCode(err, filesystem.ErrCodeNotFound) {
		return nil, err
	}
	return r.fs.MakeFile(p, false)
}
