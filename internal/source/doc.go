// Package source owns the identity of every discovered input.
//
// A Source is a small comparable value: either a handle to a plain file or
// an archive handle plus the entry name inside it. Handles index append-only
// arenas held by a Registry, which is the only place canonical absolute
// paths and archive descriptors live. Handles are never reused within a run.
package source
