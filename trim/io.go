package trim

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/xmcdata/persistence"
)

const maskMagic = "XMCM"

// WriteTo writes the mask length followed by the portable roaring encoding.
func (m *Mask) WriteTo(w io.Writer) (int64, error) {
	payload, err := m.bitmap().ToBytes()
	if err != nil {
		return 0, err
	}
	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(m.n))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(payload)))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	k, err := w.Write(payload)
	return int64(n + k), err
}

// ReadFrom replaces m with a mask read from r.
func (m *Mask) ReadFrom(r io.Reader) (int64, error) {
	var hdr [16]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil {
		return int64(n), maskCorrupt(err, "header")
	}
	length := binary.LittleEndian.Uint64(hdr[0:])
	size := binary.LittleEndian.Uint64(hdr[8:])
	if length > 1<<32 || size > 1<<32 {
		return int64(n), maskCorrupt(nil, "length %d, payload %d", length, size)
	}

	if lr, ok := r.(interface{ Len() int }); ok && size > uint64(lr.Len()) {
		return int64(n), maskCorrupt(io.ErrUnexpectedEOF, "payload %d exceeds %d remaining bytes", size, lr.Len())
	}

	payload, err := io.ReadAll(io.LimitReader(r, int64(size)))
	k := len(payload)
	if err == nil && uint64(k) != size {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return int64(n + k), maskCorrupt(err, "payload")
	}

	rb := roaring.New()
	if err := rb.UnmarshalBinary(payload); err != nil {
		return int64(n + k), maskCorrupt(err, "payload")
	}
	if !rb.IsEmpty() && uint64(rb.Maximum()) >= length {
		return int64(n + k), maskCorrupt(nil, "position %d outside length %d", rb.Maximum(), length)
	}

	m.n = int(length)
	m.rb = rb
	return int64(n + k), nil
}

func maskCorrupt(err error, format string, args ...any) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &persistence.CacheCorruptError{Field: "mask", Reason: fmt.Sprintf(format, args...), Err: err}
}

// MarshalMasks encodes a feature and a label mask into one blob.
func MarshalMasks(features, labels *Mask) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(maskMagic)
	if _, err := features.WriteTo(&buf); err != nil {
		return nil, err
	}
	if _, err := labels.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMasks decodes a blob written by MarshalMasks.
func UnmarshalMasks(data []byte) (features, labels *Mask, err error) {
	if len(data) < len(maskMagic) || string(data[:len(maskMagic)]) != maskMagic {
		return nil, nil, maskCorrupt(nil, "bad magic")
	}
	r := bytes.NewReader(data[len(maskMagic):])
	features, labels = &Mask{}, &Mask{}
	if _, err := features.ReadFrom(r); err != nil {
		return nil, nil, err
	}
	if _, err := labels.ReadFrom(r); err != nil {
		return nil, nil, err
	}
	if r.Len() != 0 {
		return nil, nil, maskCorrupt(nil, "%d trailing bytes", r.Len())
	}
	return features, labels, nil
}
