package archive

import (
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipAdapter struct{}

func (sevenZipAdapter) Enumerate(archivePath string, visit func(string) error) error {
	rc, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return openError(archivePath, err)
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := visit(f.Name); err != nil {
			return err
		}
	}
	return nil
}

func (sevenZipAdapter) Contents(archivePath, name string) ([]byte, bool, error) {
	rc, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, false, openError(archivePath, err)
	}
	defer rc.Close()

	want := normalizeName(name)
	for _, f := range rc.File {
		if f.FileInfo().IsDir() || normalizeName(f.Name) != want {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, false, readError(archivePath, name, err)
		}
		data, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			return nil, false, readError(archivePath, name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}
