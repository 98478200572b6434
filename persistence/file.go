package persistence

import (
	"io"

	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/internal/fs"
	"github.com/hupe1980/xmcdata/internal/mmap"
)

// SaveFile writes m to path atomically and returns the archive size.
func SaveFile(path string, m *csr.Matrix, optFns ...Option) (int64, error) {
	var n int64
	err := fs.WriteAtomic(fs.Default, path, func(w io.Writer) error {
		var err error
		n, err = Write(w, m, optFns...)
		return err
	})
	return n, err
}

// LoadFile memory-maps path and decodes it.
func LoadFile(path string) (*csr.Matrix, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer mapping.Close()

	_ = mapping.Advise(mmap.AccessSequential)
	return Decode(mapping.Bytes())
}

// StatFile reads the layout of the archive at path.
func StatFile(path string) (*Info, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer mapping.Close()
	return Stat(mapping.Bytes())
}
