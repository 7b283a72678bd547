// Package logging assembles the slog loggers used for audiovert diagnostics.
//
// Diagnostic logs are separate from the user-facing report: they go to
// stderr (and optionally a file) in console or JSON form, tagged with the
// component that produced them and the run identifier.
package logging
