package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// ErrCrossDevice reports a hard link or rename across filesystems.
var ErrCrossDevice = errors.New("source and destination are on different filesystems")

// CopyFileVerified streams src to dst with BLAKE3 + size integrity
// verification. dst keeps the permission bits of src and is removed on
// mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := blake3.New()
	dstHasher := blake3.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// WriteFileVerified writes data to dst and reads it back, comparing BLAKE3
// digests. dst is removed on mismatch.
func WriteFileVerified(dst string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(dst, data, mode); err != nil {
		return err
	}
	f, err := os.Open(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return err
	}
	want := blake3.Sum256(data)
	if !bytes.Equal(want[:], hasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("write hash mismatch: file corrupted during write")
	}
	return nil
}

// Link hard-links src to dst. Cross-filesystem failures wrap ErrCrossDevice.
func Link(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		return classify(err)
	}
	return nil
}

// Move renames src to dst. Cross-filesystem failures wrap ErrCrossDevice.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, unix.EXDEV) {
		return fmt.Errorf("%w: %w", ErrCrossDevice, err)
	}
	return err
}

// IsEmptyDir reports whether path is a readable directory without entries.
func IsEmptyDir(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	return errors.Is(err, io.EOF)
}

// IsWithin reports whether target is strictly below base.
func IsWithin(base, target string) bool {
	base = strings.TrimSpace(base)
	target = strings.TrimSpace(target)
	if base == "" || target == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// UniquePath returns dir/name, or dir/"stem (N).ext" with the smallest N
// that does not exist yet.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
