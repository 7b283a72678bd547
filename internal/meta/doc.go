// Package meta reads audio tags and turns them into the metadata-derived
// destination layout:
//
//	Artist/Artist - Album (Year)/[Disc NN ]Artist - Album - NN - Title.ext
//
// Two Reader implementations exist. TagReader parses tags in-process with
// github.com/dhowden/tag and ProbeReader asks ffprobe for container tags.
// Both accept either a path on disk or the bytes of an archive entry.
//
// Parse is all-or-nothing: any missing field yields an *IncompleteError
// listing every missing field, and no Parts.
package meta
