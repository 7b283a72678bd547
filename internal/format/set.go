package format

import "strings"

// Set is an ordered set of formats. Iteration follows declaration order.
type Set uint8

// SetOf builds a set from the given formats.
func SetOf(formats ...Format) Set {
	var s Set
	for _, f := range formats {
		s = s.With(f)
	}
	return s
}

// With returns a copy of s that includes f.
func (s Set) With(f Format) Set {
	if !f.Valid() {
		return s
	}
	return s | 1<<f
}

// Has reports whether f is in the set.
func (s Set) Has(f Format) bool {
	return f.Valid() && s&(1<<f) != 0
}

// Len returns the number of formats in the set.
func (s Set) Len() int {
	n := 0
	for _, f := range All {
		if s.Has(f) {
			n++
		}
	}
	return n
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool {
	return s == 0
}

// Formats returns the members in declaration order.
func (s Set) Formats() []Format {
	out := make([]Format, 0, s.Len())
	for _, f := range All {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, s.Len())
	for _, f := range s.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
