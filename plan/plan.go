// Package plan reads a list of filesystem operations from a YAML file and
// applies them through a filesystem.Filesystem, optionally as a single
// transaction that is rolled back as soon as one of the steps fails.
package plan

import (
	"bytes"
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan is returned when a plan cannot be parsed or fails validation.
const ErrInvalidPlan = errors.Sentinel("plan: invalid plan")

type Op string

const (
	OpMkdir  Op = "mkdir"
	OpTouch  Op = "touch"
	OpWrite  Op = "write"
	OpAppend Op = "append"
	OpCopy   Op = "copy"
	OpMove   Op = "move"
	OpLink   Op = "link"
	OpDelete Op = "delete"
)

// needsTarget reports whether the operation requires a target directory.
func (o Op) needsTarget() bool {
	return o == OpCopy || o == OpMove || o == OpLink
}

func (o Op) valid() bool {
	switch o {
	case OpMkdir, OpTouch, OpWrite, OpAppend, OpCopy, OpMove, OpLink, OpDelete:
		return true
	}
	return false
}

// Step is a single operation of a plan.
type Step struct {
	Op Op `yaml:"op"`
	// The item the operation acts on, or the location of the new entry for
	// mkdir, touch and link.
	Path string `yaml:"path"`
	// The directory to copy or move into, or the directory a new link points
	// at.
	Target string `yaml:"target,omitempty"`
	// The data used by write and append.
	Content string `yaml:"content,omitempty"`
	// Replace an entry already occupying the destination.
	Forced bool `yaml:"forced,omitempty"`
}

type Plan struct {
	// Run every step inside a single transaction so that a failing step
	// undoes all of the steps before it.
	Transaction bool   `default:"true" yaml:"transaction"`
	Steps       []Step `yaml:"steps"`
}

// Parse decodes and validates a plan. Fields that are not part of the plan
// format are rejected.
func Parse(r io.Reader) (*Plan, error) {
	var p Plan
	if err := defaults.Set(&p); err != nil {
		return nil, errors.WithStack(err)
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.WithMessage(ErrInvalidPlan, "plan is empty")
		}
		return nil, errors.WrapIf(errors.Combine(ErrInvalidPlan, err), "plan: failed to decode")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses the plan stored at path.
func Load(path string) (*Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Parse(bytes.NewReader(b))
}

// Validate checks that every step has a known operation and the fields that
// operation needs.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return errors.WithMessage(ErrInvalidPlan, "plan has no steps")
	}
	for i, s := range p.Steps {
		n := i + 1
		if !s.Op.valid() {
			return errors.WithMessagef(ErrInvalidPlan, "step %d: unknown operation %q", n, s.Op)
		}
		if s.Path == "" {
			return errors.WithMessagef(ErrInvalidPlan, "step %d: %s requires a path", n, s.Op)
		}
		if s.Op.needsTarget() && s.Target == "" {
			return errors.WithMessagef(ErrInvalidPlan, "step %d: %s requires a target", n, s.Op)
		}
	}
	return nil
}
