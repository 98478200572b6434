package manifest

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, c := range []codec.Codec{nil, codec.JSON{}} {
		mem := blobstore.NewMemoryStore()
		s := NewStore(mem, c)

		m := &Manifest{Split: "train", Rows: 4, FeatureCols: 5, LabelCols: 4, Compression: "zstd", CreatedAt: created}
		require.NoError(t, s.Save(ctx, m))
		assert.Equal(t, CurrentVersion, m.Version)

		names, err := mem.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"manifest_train.json"}, names)

		got, err := s.Load(ctx, "train")
		require.NoError(t, err)
		assert.Equal(t, m, got)

		require.NoError(t, s.Delete(ctx, "train"))
		_, err = s.Load(ctx, "train")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	s := NewStore(mem, nil)

	assert.Error(t, s.Save(ctx, &Manifest{}))

	require.NoError(t, mem.Put(ctx, FileName("test"), []byte("{")))
	_, err := s.Load(ctx, "test")
	assert.Error(t, err)

	require.NoError(t, mem.Put(ctx, FileName("test"), []byte(`{"version":7}`)))
	_, err = s.Load(ctx, "test")
	assert.ErrorContains(t, err, "unsupported version")
}

func TestSave_SetsCreatedAt(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore(), nil)
	m := &Manifest{Split: "test"}
	require.NoError(t, s.Save(context.Background(), m))
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, "go-json", m.Codec)
}
