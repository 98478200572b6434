package runid

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	xfs "github.com/hupe1980/xmcdata/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Next(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "last_run")
	c := New(path)

	cur, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, cur)

	for want := 1; want <= 3; want++ {
		n, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", string(raw))

	// a second counter on the same file continues the sequence
	n, err := New(path).Next()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCounter_Concurrent(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "last_run"))

	var (
		mu   sync.Mutex
		seen = map[int]bool{}
		wg   sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := c.Next()
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 16)
	cur, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 16, cur)
}

func TestCounter_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run")
	require.NoError(t, os.WriteFile(path, []byte("seven"), 0o644))

	_, err := New(path).Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a run number")

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	n, err := New(path).Next()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCounter_WriteFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run")
	faulty := xfs.NewFaultyFS(xfs.Default)
	faulty.AddRule("last_run", xfs.Fault{FailAfterBytes: -1, FailOnRename: true})

	c := New(path, WithFileSystem(faulty))
	_, err := c.Next()
	require.Error(t, err)

	cur, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, cur, "failed write must not advance the counter")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "run_0", Label(0))
	assert.Equal(t, "run_12", Label(12))
}
