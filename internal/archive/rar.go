package archive

import (
	"errors"
	"io"

	"github.com/nwaples/rardecode/v2"
)

type rarAdapter struct{}

func (rarAdapter) Enumerate(archivePath string, visit func(string) error) error {
	rc, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return openError(archivePath, err)
	}
	defer rc.Close()

	for {
		header, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return openError(archivePath, err)
		}
		if header.IsDir {
			continue
		}
		if err := visit(header.Name); err != nil {
			return err
		}
	}
}

func (rarAdapter) Contents(archivePath, name string) ([]byte, bool, error) {
	rc, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, false, openError(archivePath, err)
	}
	defer rc.Close()

	want := normalizeName(name)
	for {
		header, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, readError(archivePath, name, err)
		}
		if header.IsDir || normalizeName(header.Name) != want {
			continue
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, false, readError(archivePath, name, err)
		}
		return data, true, nil
	}
}
