// Package rules parses and evaluates the user's conversion and bitrate rules.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"audiovert/internal/format"
)

// ErrMissingSeparator reports a bitrate rule without '='.
var ErrMissingSeparator = errors.New("missing '=' separator")

// FromKind selects which source formats a From predicate accepts.
type FromKind uint8

const (
	FromLossless FromKind = iota
	FromLossy
	FromExact
)

// From is the source side of a rule: lossless, lossy or an exact format.
type From struct {
	Kind   FromKind
	Format format.Format
}

// Matches reports whether f satisfies the predicate.
func (p From) Matches(f format.Format) bool {
	switch p.Kind {
	case FromLossless:
		return f.Lossless()
	case FromLossy:
		return !f.Lossless()
	default:
		return p.Format == f
	}
}

func (p From) String() string {
	switch p.Kind {
	case FromLossless:
		return "lossless"
	case FromLossy:
		return "lossy"
	default:
		return p.Format.String()
	}
}

// ParseFrom parses "lossless", "lossy" or a format name.
func ParseFrom(value string) (From, error) {
	switch strings.TrimSpace(value) {
	case "lossless":
		return From{Kind: FromLossless}, nil
	case "lossy":
		return From{Kind: FromLossy}, nil
	}
	f, err := format.Parse(value)
	if err != nil {
		return From{}, err
	}
	return From{Kind: FromExact, Format: f}, nil
}

// To is the target side of a rule: either the source's own format or an exact one.
type To struct {
	Same   bool
	Format format.Format
}

// Resolve returns the target format for a source in format f.
func (t To) Resolve(f format.Format) format.Format {
	if t.Same {
		return f
	}
	return t.Format
}

func (t To) String() string {
	if t.Same {
		return "same"
	}
	return t.Format.String()
}

// ParseTo parses "same" or a format name.
func ParseTo(value string) (To, error) {
	if strings.TrimSpace(value) == "same" {
		return To{Same: true}, nil
	}
	f, err := format.Parse(value)
	if err != nil {
		return To{}, err
	}
	return To{Format: f}, nil
}

// Kind distinguishes the three condition shapes.
type Kind uint8

const (
	Same Kind = iota
	ToOnly
	FromTo
)

// Condition is one conversion rule.
type Condition struct {
	Kind Kind
	From From
	To   To
}

// SameCondition keeps every source in its own format.
func SameCondition() Condition {
	return Condition{Kind: Same}
}

// ToCondition converts every source to the target.
func ToCondition(to To) Condition {
	return Condition{Kind: ToOnly, To: to}
}

// FromToCondition converts sources matching from to the target.
func FromToCondition(from From, to To) Condition {
	return Condition{Kind: FromTo, From: from, To: to}
}

// DefaultConditions converts lossless sources to mp3 and keeps lossy ones.
func DefaultConditions() []Condition {
	return []Condition{
		FromToCondition(From{Kind: FromLossless}, To{Format: format.MP3}),
		FromToCondition(From{Kind: FromLossy}, To{Same: true}),
	}
}

// Target returns the format a source in f should be produced in, if the
// condition applies to it.
func (c Condition) Target(f format.Format) (format.Format, bool) {
	switch c.Kind {
	case Same:
		return f, true
	case ToOnly:
		return c.To.Resolve(f), true
	default:
		if !c.From.Matches(f) {
			return 0, false
		}
		return c.To.Resolve(f), true
	}
}

func (c Condition) String() string {
	switch c.Kind {
	case Same:
		return "same"
	case ToOnly:
		return c.To.String()
	default:
		return c.From.String() + "=" + c.To.String()
	}
}

// ParseCondition parses "same", "<to>" or "<from>=<to>".
func ParseCondition(value string) (Condition, error) {
	value = strings.TrimSpace(value)
	if value == "same" {
		return SameCondition(), nil
	}
	from, to, ok := strings.Cut(value, "=")
	if !ok {
		target, err := ParseTo(value)
		if err != nil {
			return Condition{}, fmt.Errorf("conversion %q: %w", value, err)
		}
		return ToCondition(target), nil
	}
	source, err := ParseFrom(from)
	if err != nil {
		return Condition{}, fmt.Errorf("conversion %q: %w", value, err)
	}
	target, err := ParseTo(to)
	if err != nil {
		return Condition{}, fmt.Errorf("conversion %q: %w", value, err)
	}
	return FromToCondition(source, target), nil
}

// Targets evaluates every condition against f and unions the results.
// The set is ordered by format declaration, so rule order never changes it.
func Targets(conditions []Condition, f format.Format) format.Set {
	var set format.Set
	for _, c := range conditions {
		if target, ok := c.Target(f); ok {
			set = set.With(target)
		}
	}
	return set
}
