package source

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"audiovert/internal/archive"
)

// ErrInvalidID reports a handle this registry never produced.
var ErrInvalidID = errors.New("invalid source id")

// FileEntry describes a registered plain file.
type FileEntry struct {
	// Path is the path as discovered, used for display.
	Path string
	// Abs is the canonical absolute path, used for display, links and reads.
	Abs string
	// Local is the absolute path with symlinks left in place, used for
	// renames and trash.
	Local string
}

// ArchiveEntry describes a registered archive.
type ArchiveEntry struct {
	Kind archive.Kind
	Path string
	Abs  string
}

// Registry owns every discovered file and archive for one run.
type Registry struct {
	files    []FileEntry
	archives []ArchiveEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// PushFile canonicalizes path and registers it.
func (r *Registry) PushFile(p string) (FileID, error) {
	abs, err := Canonicalize(p)
	if err != nil {
		return 0, err
	}
	local, err := filepath.Abs(p)
	if err != nil {
		return 0, fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	r.files = append(r.files, FileEntry{Path: p, Abs: abs, Local: local})
	return FileID(len(r.files) - 1), nil
}

// PushArchive canonicalizes path and registers it as an archive of kind.
func (r *Registry) PushArchive(kind archive.Kind, p string) (ArchiveID, error) {
	abs, err := Canonicalize(p)
	if err != nil {
		return 0, err
	}
	r.archives = append(r.archives, ArchiveEntry{Kind: kind, Path: p, Abs: abs})
	return ArchiveID(len(r.archives) - 1), nil
}

// File resolves a file handle.
func (r *Registry) File(id FileID) (FileEntry, error) {
	if id < 0 || int(id) >= len(r.files) {
		return FileEntry{}, fmt.Errorf("%w: file#%d", ErrInvalidID, id)
	}
	return r.files[id], nil
}

// Archive resolves an archive handle.
func (r *Registry) Archive(id ArchiveID) (ArchiveEntry, error) {
	if id < 0 || int(id) >= len(r.archives) {
		return ArchiveEntry{}, fmt.Errorf("%w: archive#%d", ErrInvalidID, id)
	}
	return r.archives[id], nil
}

// Len returns the number of registered files and archives.
func (r *Registry) Len() (files, archives int) {
	return len(r.files), len(r.archives)
}

// Ext returns the lower-case extension of the source without the dot.
func (r *Registry) Ext(s Source) (string, error) {
	switch s.origin {
	case File:
		f, err := r.File(s.file)
		if err != nil {
			return "", err
		}
		return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Path), ".")), nil
	case Archive:
		if _, err := r.Archive(s.archive); err != nil {
			return "", err
		}
		return strings.ToLower(strings.TrimPrefix(path.Ext(s.entry), ".")), nil
	default:
		return "", ErrInvalidID
	}
}

// Contents reads the bytes of an archive-resident source.
func (r *Registry) Contents(s Source) ([]byte, error) {
	id, entry, ok := s.Archive()
	if !ok {
		return nil, fmt.Errorf("%s is not an archive entry: %w", s, ErrInvalidID)
	}
	a, err := r.Archive(id)
	if err != nil {
		return nil, err
	}
	adapter, err := archive.For(a.Kind)
	if err != nil {
		return nil, err
	}
	data, found, err := adapter.Contents(a.Abs, entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s not found in %s", archive.ErrRead, entry, a.Path)
	}
	return data, nil
}

// Enumerate lists the entries of a registered archive.
func (r *Registry) Enumerate(id ArchiveID, visit func(name string) error) error {
	a, err := r.Archive(id)
	if err != nil {
		return err
	}
	adapter, err := archive.For(a.Kind)
	if err != nil {
		return err
	}
	return adapter.Enumerate(a.Abs, visit)
}

// Canonicalize returns the absolute, symlink-resolved form of p.
func Canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", p, err)
	}
	return resolved, nil
}
