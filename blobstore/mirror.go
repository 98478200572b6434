package blobstore

import (
	"context"
	"errors"
	"io"
)

// MirrorStore keeps a local copy of blobs held by a remote store. Reads are
// served from the local store, fetching from the remote on first access;
// writes go to the remote first and then to the local copy.
type MirrorStore struct {
	remote BlobStore
	local  BlobStore
}

// NewMirrorStore creates a MirrorStore.
func NewMirrorStore(remote, local BlobStore) *MirrorStore {
	return &MirrorStore{remote: remote, local: local}
}

// Open serves name from the local copy, downloading it on a miss.
func (s *MirrorStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.local.Open(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	data, err := ReadAll(ctx, s.remote, name)
	if err != nil {
		return nil, err
	}
	if err := s.local.Put(ctx, name, data); err != nil {
		return nil, err
	}
	return s.local.Open(ctx, name)
}

// Create streams to the remote store and mirrors the blob locally on Close.
func (s *MirrorStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.remote.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	lw, err := s.local.Create(ctx, name)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return &mirrorWritableBlob{remote: w, local: lw, w: io.MultiWriter(w, lw)}, nil
}

// Put writes to the remote store and then to the local copy.
func (s *MirrorStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.remote.Put(ctx, name, data); err != nil {
		return err
	}
	return s.local.Put(ctx, name, data)
}

// Delete removes name from both stores.
func (s *MirrorStore) Delete(ctx context.Context, name string) error {
	return errors.Join(s.remote.Delete(ctx, name), s.local.Delete(ctx, name))
}

// List lists the remote store, which is authoritative.
func (s *MirrorStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}

type mirrorWritableBlob struct {
	remote WritableBlob
	local  WritableBlob
	w      io.Writer
}

func (b *mirrorWritableBlob) Write(p []byte) (int, error) { return b.w.Write(p) }

func (b *mirrorWritableBlob) Sync() error {
	return errors.Join(b.remote.Sync(), b.local.Sync())
}

func (b *mirrorWritableBlob) Close() error {
	return errors.Join(b.remote.Close(), b.local.Close())
}
