// Package runid hands out increasing run numbers backed by a small counter
// file. Callers own the Counter; there is no process-wide state.
//
//	c := runid.New("runs/last_run")
//	n, err := c.Next()
//	dir := filepath.Join("runs", runid.Label(n))
package runid

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	xfs "github.com/hupe1980/xmcdata/internal/fs"
)

// Counter persists the last issued run number in a file.
type Counter struct {
	path string
	fs   xfs.FileSystem
	mu   sync.Mutex
}

// Option configures a Counter.
type Option func(*Counter)

// WithFileSystem replaces the local file system.
func WithFileSystem(fsys xfs.FileSystem) Option {
	return func(c *Counter) {
		c.fs = fsys
	}
}

// New returns a counter stored at path. The file is created on first use.
func New(path string, optFns ...Option) *Counter {
	c := &Counter{path: path, fs: xfs.Default}
	for _, fn := range optFns {
		fn(c)
	}
	return c
}

// Path returns the counter file.
func (c *Counter) Path() string { return c.path }

// Current returns the last issued number, or 0 when none was issued.
func (c *Counter) Current() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Next increments the counter and returns the new number, starting at 1.
// The file is replaced atomically.
func (c *Counter) Next() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.read()
	if err != nil {
		return 0, err
	}
	n++

	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return 0, fmt.Errorf("runid: %w", err)
	}
	err = xfs.WriteAtomic(c.fs, c.path, func(w io.Writer) error {
		_, err := io.WriteString(w, strconv.Itoa(n)+"\n")
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("runid: write %s: %w", c.path, err)
	}
	return n, nil
}

func (c *Counter) read() (int, error) {
	f, err := c.fs.OpenFile(c.path, os.O_RDONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("runid: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("runid: read %s: %w", c.path, err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("runid: %s holds %q, not a run number", c.path, text)
	}
	return n, nil
}

// Label formats a run number as a directory name.
func Label(n int) string {
	return "run_" + strconv.Itoa(n)
}
