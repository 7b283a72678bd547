package plan

import (
	"fmt"

	"audiovert/internal/format"
	"audiovert/internal/source"
)

// TransferKind selects the filesystem primitive of a Transfer.
type TransferKind uint8

const (
	Copy TransferKind = iota
	Link
	Move
)

// Command returns the shell command the transfer is equivalent to.
func (k TransferKind) Command() string {
	switch k {
	case Link:
		return "ln"
	case Move:
		return "mv"
	default:
		return "cp"
	}
}

func (k TransferKind) String() string {
	switch k {
	case Link:
		return "link"
	case Move:
		return "move"
	default:
		return "copy"
	}
}

// Kind is either *Convert or Transfer.
type Kind interface {
	// Completed reports whether the main action has finished.
	Completed() bool
	fmt.Stringer
	isKind()
}

// Convert encodes a source into another format through a partial file.
type Convert struct {
	PartPath  string
	From      format.Format
	To        format.Format
	Converted bool
}

func (c *Convert) Completed() bool { return c.Converted }

func (c *Convert) String() string {
	return fmt.Sprintf("converting %s to %s", c.From, c.To)
}

func (*Convert) isKind() {}

// Transfer places the source bytes at the destination unchanged. It has no
// partial state; Task.Moved guards the filesystem action.
type Transfer struct {
	Kind TransferKind
}

func (Transfer) Completed() bool { return true }

func (t Transfer) String() string {
	switch t.Kind {
	case Link:
		return "linking"
	case Move:
		return "moving"
	default:
		return "copying"
	}
}

func (Transfer) isKind() {}

// PreRemove is a deletion that must succeed before the main action runs.
type PreRemove struct {
	Reason string
	Path   string
}

const (
	ReasonPartial  = "partial file"
	ReasonExisting = "existing destination"
)

// Task is one planned unit of work.
type Task struct {
	Index  int
	Source source.Source
	From   format.Format
	// ToPath is the destination as displayed; ToAbs is its absolute form.
	ToPath string
	ToAbs  string
	Kind   Kind
	Moved  bool
	// PreRemove lists pending removals; executed entries are dropped.
	PreRemove []PreRemove
	// Existing marks a task skipped because the destination already exists.
	Existing bool
	// Root is the absolute scan root the source was discovered under.
	Root string
}

// Completed reports whether nothing is left to do for t.
func (t *Task) Completed() bool {
	return t.Kind.Completed() && t.Moved && len(t.PreRemove) == 0
}

// Convert returns the conversion state when t is a Convert task.
func (t *Task) Convert() (*Convert, bool) {
	c, ok := t.Kind.(*Convert)
	return c, ok
}

// Transfer returns the transfer kind when t is a Transfer task.
func (t *Task) Transfer() (TransferKind, bool) {
	tr, ok := t.Kind.(Transfer)
	return tr.Kind, ok
}
