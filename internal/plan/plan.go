package plan

import (
	"audiovert/internal/format"
	"audiovert/internal/meta"
	"audiovert/internal/source"
)

// PathError collects the messages attributed to one source, or to a path
// that never became a source.
type PathError struct {
	Source   source.Source
	Path     string
	Messages []string
}

func (e PathError) Error() string {
	if len(e.Messages) == 0 {
		return e.Path
	}
	return e.Path + ": " + e.Messages[0]
}

// Match records the targets a source matched.
type Match struct {
	Source source.Source
	From   format.Format
	To     []format.Format
}

// Exists records a destination skipped because it is already present.
type Exists struct {
	Source source.Source
	Path   string
	Abs    string
}

// Unsupported records a file whose extension no component recognizes.
type Unsupported struct {
	Source source.Source
	Ext    string
}

// MetaDump holds the raw tag items read for a source.
type MetaDump struct {
	Source source.Source
	Items  []meta.Item
}

// Plan is the outcome of one planning pass.
type Plan struct {
	Registry    *source.Registry
	Tasks       []*Task
	Errors      []PathError
	Matches     []Match
	Exists      []Exists
	Unsupported []Unsupported
	MetaDumps   []MetaDump
}

// Pending returns the tasks that still have work to do.
func (p *Plan) Pending() []*Task {
	var out []*Task
	for _, t := range p.Tasks {
		if !t.Completed() {
			out = append(out, t)
		}
	}
	return out
}

// HasConvert reports whether any pending task needs the encoder.
func (p *Plan) HasConvert() bool {
	for _, t := range p.Tasks {
		if c, ok := t.Convert(); ok && !c.Converted {
			return true
		}
	}
	return false
}

// DisplayPath returns the discovered path of a source. Archive entries are
// rendered as "<archive path>:<entry>".
func (p *Plan) DisplayPath(s source.Source) string {
	if id, ok := s.File(); ok {
		if f, err := p.Registry.File(id); err == nil {
			return f.Path
		}
	}
	if id, entry, ok := s.Archive(); ok {
		if a, err := p.Registry.Archive(id); err == nil {
			return a.Path + ":" + entry
		}
	}
	return s.String()
}
