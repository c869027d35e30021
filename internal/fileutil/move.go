package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// TempSibling returns a hidden path next to target that keeps target's
// extension, so tools that infer the container from the name still work.
func TempSibling(target, tag string) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if tag == "" {
		tag = "tmp"
	}
	return filepath.Join(dir, "."+stem+"."+tag+".partial"+ext)
}

// MoveFile renames src to dst, falling back to a verified copy when the two
// paths are on different filesystems.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	if err := CopyVerified(src, dst); err != nil {
		return fmt.Errorf("copy across filesystems: %w", err)
	}
	return os.Remove(src)
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// NonEmptyFile reports whether path is a regular file with content.
func NonEmptyFile(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return 0, false
	}
	return info.Size(), true
}
