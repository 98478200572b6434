// Package manifest describes a cached dataset split in a small JSON sidecar.
//
// The manifest is informational. Cache freshness is decided by the caller,
// never by comparing a manifest against its source.
package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/codec"
)

// CurrentVersion is written into every new manifest.
const CurrentVersion = 1

// Manifest describes the filtered pair cached for one split.
type Manifest struct {
	Version       int       `json:"version"`
	Codec         string    `json:"codec"`
	Split         string    `json:"split"`
	Rows          int       `json:"rows"`
	FeatureCols   int       `json:"feature_cols"`
	LabelCols     int       `json:"label_cols"`
	FeatureNNZ    int       `json:"feature_nnz"`
	LabelNNZ      int       `json:"label_nnz"`
	SourceRows    int       `json:"source_rows"`
	MinWords      int       `json:"min_words"`
	MinLabels     int       `json:"min_labels"`
	ExplicitMasks bool      `json:"explicit_masks,omitempty"`
	Compression   string    `json:"compression"`
	CreatedAt     time.Time `json:"created_at"`
}

// FileName returns the sidecar name for split.
func FileName(split string) string {
	return fmt.Sprintf("manifest_%s.json", split)
}

// Store reads and writes manifests in a blob store.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
}

// NewStore creates a manifest store. A nil codec selects codec.Default.
func NewStore(store blobstore.BlobStore, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{store: store, codec: c}
}

// Save writes m for its split, replacing any previous manifest.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	if m.Split == "" {
		return fmt.Errorf("manifest: empty split")
	}
	m.Version = CurrentVersion
	m.Codec = s.codec.Name()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	return s.store.Put(ctx, FileName(m.Split), data)
}

// Load reads the manifest of split. A missing manifest yields
// blobstore.ErrNotFound.
func (s *Store) Load(ctx context.Context, split string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, s.store, FileName(split))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", FileName(split), err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("manifest: unsupported version %d", m.Version)
	}
	return &m, nil
}

// Delete removes the manifest of split.
func (s *Store) Delete(ctx context.Context, split string) error {
	return s.store.Delete(ctx, FileName(split))
}
