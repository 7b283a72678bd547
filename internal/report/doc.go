// Package report is the user-facing output sink.
//
// Out writes indented, optionally colored lines. Indentation is shared by
// every caller holding the same Out and is scoped: Indent returns a func
// that restores the previous depth, and Nest runs a callback one level
// deeper. Info lines are green, warnings yellow, errors red; Blank lines
// are uncolored.
//
// The shell helpers render paths and commands the way a user would type
// them, so printed commands can be copied into a shell.
package report
