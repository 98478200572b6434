package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/internal/hash"
)

// Write encodes m as an archive and returns the number of bytes written.
func Write(w io.Writer, m *csr.Matrix, optFns ...Option) (int64, error) {
	opts := applyOptions(optFns)
	if !opts.Compression.valid() {
		return 0, fmt.Errorf("persistence: invalid compression %d", opts.Compression)
	}

	rows, cols := m.Shape()
	sections := []struct {
		name    string
		kind    kind
		count   int
		payload []byte
	}{
		{FieldData, kindFloat32, m.NNZ(), float32Bytes(m.Data())},
		{FieldIndices, kindUint32, m.NNZ(), uint32Bytes(m.Indices())},
		{FieldIndptr, kindUint32, len(m.Indptr()), uint32Bytes(m.Indptr())},
		{FieldShape, kindInt64, 2, int64Bytes([]int64{int64(rows), int64(cols)})},
	}

	cw := NewChecksumWriter(w)

	var hdr [headerSize]byte
	copy(hdr[0:4], Magic)
	binary.LittleEndian.PutUint16(hdr[4:], Version)
	hdr[6] = byte(opts.Compression)
	hdr[7] = byte(len(sections))
	if _, err := cw.Write(hdr[:]); err != nil {
		return cw.Count(), err
	}

	for _, s := range sections {
		stored, err := compressPayload(s.payload, opts.Compression, opts.BlockSize)
		if err != nil {
			return cw.Count(), fmt.Errorf("persistence: compress %s: %w", s.name, err)
		}

		sh := make([]byte, 0, 1+len(s.name)+1+8+8+4)
		sh = append(sh, byte(len(s.name)))
		sh = append(sh, s.name...)
		sh = append(sh, byte(s.kind))
		sh = binary.LittleEndian.AppendUint64(sh, uint64(s.count))
		sh = binary.LittleEndian.AppendUint64(sh, uint64(len(stored)))
		sh = binary.LittleEndian.AppendUint32(sh, hash.CRC32C(s.payload))
		if _, err := cw.Write(sh); err != nil {
			return cw.Count(), err
		}
		if _, err := cw.Write(stored); err != nil {
			return cw.Count(), err
		}
	}

	var footer [footerSize]byte
	binary.LittleEndian.PutUint32(footer[:], cw.Sum())
	if _, err := cw.Write(footer[:]); err != nil {
		return cw.Count(), err
	}
	return cw.Count(), nil
}
