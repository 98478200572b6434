package fs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

const writeBufferSize = 256 * 1024

// WriteAtomic writes a file through a temporary sibling and renames it into
// place, so readers observe either the previous content or the complete new
// content. The temporary file is removed on every error path.
func WriteAtomic(fsys FileSystem, path string, write func(io.Writer) error) error {
	if fsys == nil {
		fsys = Default
	}
	dir := filepath.Dir(path)

	tmp, err := fsys.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, writeBufferSize)
	if err := write(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if f, ok := tmp.(*os.File); ok {
		// CreateTemp uses 0600
		_ = os.Chmod(f.Name(), 0o644)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""

	// Best effort: the rename already happened.
	_ = fsys.SyncDir(dir)
	return nil
}
