// Package plan discovers sources and turns them into an ordered list of
// idempotent tasks.
//
// Discovery walks every input path in lexical order. Plain files with a
// known audio extension become file sources; zip, rar and 7z archives are
// enumerated and their entries appear as if the archive were a directory
// named after its stem. Every other file is reported as unsupported.
//
// For each source the rule set yields target formats. The destination of a
// (source, target) pair is either the source path with its extension
// swapped, the same path mirrored under an output directory, or a
// metadata-derived layout (see package meta). Tasks are Convert or Transfer
// and carry the filesystem state observed at planning time: destinations
// that already exist are skipped unless forced, and stale partial files
// are queued for removal. Planning the same tree twice yields the same
// tasks, so a rerun after success does no destructive work.
package plan
