package source

import "fmt"

// FileID is a handle to a plain file in a Registry.
type FileID int

// ArchiveID is a handle to an archive in a Registry.
type ArchiveID int

// Origin distinguishes the two source shapes. The zero value means "no source".
type Origin uint8

const (
	None Origin = iota
	File
	Archive
)

// Source is either a plain file or an entry inside an archive. Two sources
// are equal when they name the same file or the same archive entry.
type Source struct {
	origin  Origin
	file    FileID
	archive ArchiveID
	entry   string
}

// FromFile returns the source for a registered plain file.
func FromFile(id FileID) Source {
	return Source{origin: File, file: id}
}

// FromArchive returns the source for an entry of a registered archive.
func FromArchive(id ArchiveID, entry string) Source {
	return Source{origin: Archive, archive: id, entry: entry}
}

// Origin reports which variant s holds.
func (s Source) Origin() Origin {
	return s.origin
}

// IsFile reports whether s is a plain file.
func (s Source) IsFile() bool {
	return s.origin == File
}

// IsArchive reports whether s lives inside an archive.
func (s Source) IsArchive() bool {
	return s.origin == Archive
}

// File returns the file handle when s is a plain file.
func (s Source) File() (FileID, bool) {
	return s.file, s.origin == File
}

// Archive returns the archive handle and entry name when s lives in an archive.
func (s Source) Archive() (ArchiveID, string, bool) {
	return s.archive, s.entry, s.origin == Archive
}

func (s Source) String() string {
	switch s.origin {
	case File:
		return fmt.Sprintf("file#%d", s.file)
	case Archive:
		return fmt.Sprintf("archive#%d:%s", s.archive, s.entry)
	default:
		return "none"
	}
}
