package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

// AtomicWrite writes data to targetPath through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func AtomicWrite(targetPath scpath.AbsolutePath, data []byte, mode os.FileMode) error {
	return AtomicWriteFunc(targetPath, mode, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteFunc is AtomicWrite for content produced by a streaming encoder.
// fill receives the temporary file; the file is synced, chmod'ed to mode and
// renamed over targetPath only if fill returns nil.
func AtomicWriteFunc(targetPath scpath.AbsolutePath, mode os.FileMode, fill func(w io.Writer) error) error {
	dir := filepath.Dir(targetPath.String())
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			tmpFile.Close()
			os.Remove(tmpName)
		}
	}()

	if err := fill(tmpFile); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := syncAndClose(tmpFile); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, targetPath.String()); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	committed = true
	return nil
}

func syncAndClose(f *os.File) error {
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
