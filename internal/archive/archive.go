package archive

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrOpen reports an archive that could not be opened or parsed.
	ErrOpen = errors.New("cannot open archive")
	// ErrRead reports an entry that could not be decompressed.
	ErrRead = errors.New("cannot read archive entry")
)

// Kind identifies an archive format.
type Kind uint8

const (
	Zip Kind = iota + 1
	Rar
	SevenZip
)

func (k Kind) String() string {
	switch k {
	case Zip:
		return "zip"
	case Rar:
		return "rar"
	case SevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// KindFromExt maps a file extension (with or without the dot) to an archive kind.
func KindFromExt(ext string) (Kind, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "zip":
		return Zip, true
	case "rar":
		return Rar, true
	case "7z":
		return SevenZip, true
	default:
		return 0, false
	}
}

// Adapter reads one archive format.
type Adapter interface {
	// Enumerate calls visit with every file entry name. It stops at and
	// returns the first error from visit.
	Enumerate(archivePath string, visit func(name string) error) error
	// Contents returns the bytes of the named entry. The boolean is false
	// when no entry has that name.
	Contents(archivePath, name string) ([]byte, bool, error)
}

// For returns the adapter for kind.
//
//nolint:ireturn // one capability, several formats
func For(kind Kind) (Adapter, error) {
	switch kind {
	case Zip:
		return zipAdapter{}, nil
	case Rar:
		return rarAdapter{}, nil
	case SevenZip:
		return sevenZipAdapter{}, nil
	default:
		return nil, fmt.Errorf("archive kind %d: %w", kind, ErrOpen)
	}
}

// IsTraversal reports whether name is absolute or contains a ".." component,
// either of which would escape the virtual directory an archive maps to.
func IsTraversal(name string) bool {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// normalizeName converts a stored entry name to slash form without a
// leading "./".
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func openError(archivePath string, err error) error {
	return fmt.Errorf("%w %s: %w", ErrOpen, archivePath, err)
}

func readError(archivePath, name string, err error) error {
	return fmt.Errorf("%w %s in %s: %w", ErrRead, name, archivePath, err)
}
