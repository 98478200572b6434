package xmcdata

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/internal/resource"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSplit(t *testing.T, dir, split, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, split+".txt"), []byte(text), 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSplit(t, dir, "train", testutil.Fixture)
	return dir
}

func assertRowsNonEmpty(t *testing.T, d *Data) {
	t.Helper()
	for i, n := range d.X.RowNNZ() {
		assert.Positive(t, n, "X row %d", i)
	}
	for i, n := range d.Y.RowNNZ() {
		assert.Positive(t, n, "Y row %d", i)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name                   string
		minWords, minLabels    int
		rows, xCols, yCols     int
		featureKept, labelKept int
	}{
		{"no trimming", 0, 0, 4, 5, 4, 5, 4},
		{"min labels", 0, 2, 3, 5, 2, 5, 2},
		{"min words and labels", 2, 2, 2, 3, 2, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := fixtureDir(t)
			opts := []Option{WithMinWords(tt.minWords), WithMinLabels(tt.minLabels)}

			d, err := Load(ctx, dir, "train", opts...)
			require.NoError(t, err)
			assert.False(t, d.FromCache)
			assert.Equal(t, tt.rows, d.X.Rows())
			assert.Equal(t, tt.rows, d.Y.Rows())
			assert.Equal(t, tt.xCols, d.X.Cols())
			assert.Equal(t, tt.yCols, d.Y.Cols())
			assert.Equal(t, tt.featureKept, d.FeatureMask.Count())
			assert.Equal(t, tt.labelKept, d.LabelMask.Count())
			assert.True(t, d.X.IsCanonical())
			assertRowsNonEmpty(t, d)

			for _, name := range []string{"X_train.xmc", "Y_train.xmc", "masks_train.roar", "manifest_train.json"} {
				assert.FileExists(t, filepath.Join(dir, name))
			}

			cached, err := Load(ctx, dir, "train", opts...)
			require.NoError(t, err)
			assert.True(t, cached.FromCache)
			assert.True(t, d.X.Equal(cached.X))
			assert.True(t, d.Y.Equal(cached.Y))
			assert.True(t, d.FeatureMask.Equal(cached.FeatureMask))
			assert.True(t, d.LabelMask.Equal(cached.LabelMask))
			require.NotNil(t, cached.Manifest)
			assert.Equal(t, tt.rows, cached.Manifest.Rows)
			assert.Equal(t, 4, cached.Manifest.SourceRows)
		})
	}
}

func TestLoad_DefaultDropsUnusedColumns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeSplit(t, dir, "train", "2 4 3\n0 0:1 2:2\n2 2:3\n")

	d, err := Load(ctx, dir, "train")
	require.NoError(t, err)
	assert.Equal(t, 2, d.X.Cols())
	assert.Equal(t, 2, d.Y.Cols())

	d, err = Load(ctx, dir, "train", WithForce(true), WithMinWords(0), WithMinLabels(0))
	require.NoError(t, err)
	assert.Equal(t, 4, d.X.Cols())
	assert.Equal(t, 3, d.Y.Cols())
}

func TestLoad_WorkedExample(t *testing.T) {
	d, err := Load(context.Background(), fixtureDir(t), "train")
	require.NoError(t, err)

	x0, err := d.X.DenseRow(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.1, 0, 1.7, 0, 0}, x0)
	y0, err := d.Y.DenseRow(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 0, 0}, y0)
}

func TestLoad_CacheShortCircuitsThresholds(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)

	_, err := Load(ctx, dir, "train")
	require.NoError(t, err)

	d, err := Load(ctx, dir, "train", WithMinLabels(2))
	require.NoError(t, err)
	assert.True(t, d.FromCache)
	assert.Equal(t, 4, d.Y.Cols())

	d, err = Load(ctx, dir, "train", WithMinLabels(2), WithForce(true))
	require.NoError(t, err)
	assert.False(t, d.FromCache)
	assert.Equal(t, 2, d.Y.Cols())

	d, err = Load(ctx, dir, "train")
	require.NoError(t, err)
	assert.True(t, d.FromCache)
	assert.Equal(t, 2, d.Y.Cols())
}

func TestLoad_CorruptCacheFallsBack(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)

	first, err := Load(ctx, dir, "train", WithCompression(persistence.CompressionZSTD))
	require.NoError(t, err)

	for _, name := range []string{"X_train.xmc", "Y_train.xmc", "masks_train.roar"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o644))

			metrics := &BasicMetricsCollector{}
			d, err := Load(ctx, dir, "train", WithMetricsCollector(metrics))
			require.NoError(t, err)
			assert.False(t, d.FromCache)
			assert.True(t, first.X.Equal(d.X))
			assert.True(t, first.Y.Equal(d.Y))

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.CacheCorrupt)
			assert.Equal(t, int64(1), stats.ParseCount)
			assert.Equal(t, int64(1), stats.CacheSaveCount)

			again, err := Load(ctx, dir, "train")
			require.NoError(t, err)
			assert.True(t, again.FromCache)
		})
	}
}

func TestLoad_MasksFromTrainingSplit(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)
	writeSplit(t, dir, "test", "2 5 4\n0 0:1.0 3:2.0\n3 4:1.0\n")

	train, err := Load(ctx, dir, "train", WithMinWords(2), WithMinLabels(2))
	require.NoError(t, err)

	test, err := Load(ctx, dir, "test", WithMasks(train.FeatureMask, train.LabelMask))
	require.NoError(t, err)
	assert.Equal(t, train.X.Cols(), test.X.Cols())
	assert.Equal(t, train.Y.Cols(), test.Y.Cols())
	assert.Equal(t, 1, test.X.Rows())
	assert.True(t, test.Manifest.ExplicitMasks)
	assert.True(t, train.FeatureMask.Equal(test.FeatureMask))

	_, err = Load(ctx, dir, "test", WithForce(true), WithMasks(train.LabelMask, nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLoad_Store(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)
	store := blobstore.NewMemoryStore()

	_, err := Load(ctx, dir, "train", WithStore(store))
	require.NoError(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"X_train.xmc", "Y_train.xmc", "manifest_train.json", "masks_train.roar"}, names)
	assert.NoFileExists(t, filepath.Join(dir, "X_train.xmc"))

	// the source is no longer needed once cached
	require.NoError(t, os.Remove(filepath.Join(dir, "train.txt")))
	d, err := Load(ctx, dir, "train", WithStore(store))
	require.NoError(t, err)
	assert.True(t, d.FromCache)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing source", func(t *testing.T) {
		_, err := Load(ctx, t.TempDir(), "train")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad header", func(t *testing.T) {
		dir := t.TempDir()
		writeSplit(t, dir, "train", "4 5\n0 0:1\n")
		_, err := Load(ctx, dir, "train")
		assert.ErrorIs(t, err, ErrFormat)
		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 1, fe.Line)
	})

	t.Run("empty split", func(t *testing.T) {
		_, err := Load(ctx, t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Load(cctx, fixtureDir(t), "train")
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestLoad_Logging(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Load(ctx, dir, "train", WithLogger(logger))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"msg":"cache miss"`)
	assert.Contains(t, out, `"msg":"parse completed"`)
	assert.Contains(t, out, `"msg":"trim completed"`)
	assert.Contains(t, out, `"msg":"cache saved"`)
	assert.Contains(t, out, `"split":"train"`)

	buf.Reset()
	_, err = Load(ctx, dir, "train", WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"cache hit"`)
}

func TestLoad_IOLimiter(t *testing.T) {
	ctx := context.Background()
	dir := fixtureDir(t)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})

	data, err := Load(ctx, dir, "train", WithIOLimiter(rc), WithMinLabels(2))
	require.NoError(t, err)
	assert.False(t, data.FromCache)
	assert.Equal(t, 3, data.X.Rows())

	again, err := Load(ctx, dir, "train", WithIOLimiter(rc))
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.True(t, data.X.Equal(again.X))
}
