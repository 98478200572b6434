package persistence

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/internal/conv"
	"github.com/hupe1980/xmcdata/internal/hash"
)

// Read decodes an archive from r.
func Read(r io.Reader) (*csr.Matrix, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Info describes an archive without materializing its arrays.
type Info struct {
	Version     uint16
	Compression Compression
	Rows        int
	Cols        int
	NNZ         int
	// Stored is the on-disk payload size per section.
	Stored map[string]int64
}

type section struct {
	kind    kind
	count   uint64
	crc     uint32
	payload []byte
}

// Decode decodes an archive held in memory. The result never aliases data,
// so data may be a memory mapping that is released afterwards.
func Decode(data []byte) (*csr.Matrix, error) {
	comp, sections, err := parse(data)
	if err != nil {
		return nil, err
	}

	arrays := make(map[string][]byte, len(fieldKinds))
	for name, k := range fieldKinds {
		s := sections[name]
		n, err := conv.Uint64ToInt(s.count)
		if err != nil || n > math.MaxInt/k.size() {
			return nil, corrupt(name, err, "element count %d too large", s.count)
		}
		raw, err := decompressPayload(s.payload, comp, n*k.size())
		if err != nil {
			return nil, corrupt(name, err, "payload")
		}
		if err := verifyChecksum(raw, s.crc); err != nil {
			return nil, corrupt(name, err, "payload")
		}
		arrays[name] = raw
	}

	shape := decodeInt64s(arrays[FieldShape])
	if len(shape) != 2 {
		return nil, corrupt(FieldShape, nil, "has %d elements, want 2", len(shape))
	}
	if shape[0] < 0 || shape[1] < 0 || shape[0] > math.MaxUint32 || shape[1] > math.MaxUint32+1 {
		return nil, corrupt(FieldShape, nil, "invalid shape (%d, %d)", shape[0], shape[1])
	}

	m, err := csr.New(
		decodeFloat32s(arrays[FieldData]),
		decodeUint32s(arrays[FieldIndices]),
		decodeUint32s(arrays[FieldIndptr]),
		int(shape[0]), int(shape[1]),
	)
	if err != nil {
		return nil, corrupt("matrix", err, "inconsistent arrays")
	}
	return m, nil
}

// Stat reads the archive layout and shape without decoding data arrays.
func Stat(data []byte) (*Info, error) {
	comp, sections, err := parse(data)
	if err != nil {
		return nil, err
	}

	s := sections[FieldShape]
	if s.count != 2 {
		return nil, corrupt(FieldShape, nil, "has %d elements, want 2", s.count)
	}
	raw, err := decompressPayload(s.payload, comp, 2*kindInt64.size())
	if err != nil {
		return nil, corrupt(FieldShape, err, "payload")
	}
	shape := decodeInt64s(raw)

	info := &Info{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Compression: comp,
		Rows:        int(shape[0]),
		Cols:        int(shape[1]),
		NNZ:         int(sections[FieldData].count),
		Stored:      make(map[string]int64, len(sections)),
	}
	for name, s := range sections {
		info.Stored[name] = int64(len(s.payload))
	}
	return info, nil
}

// parse validates header and footer and splits the archive into sections.
func parse(data []byte) (Compression, map[string]section, error) {
	if len(data) < headerSize+footerSize {
		return 0, nil, corrupt("header", nil, "archive has %d bytes", len(data))
	}
	if string(data[0:4]) != Magic {
		return 0, nil, corrupt("header", nil, "bad magic %q", data[0:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return 0, nil, corrupt("header", nil, "unsupported version %d", v)
	}
	comp := Compression(data[6])
	if !comp.valid() {
		return 0, nil, corrupt("header", nil, "unknown compression %d", data[6])
	}
	count := int(data[7])

	body := data[:len(data)-footerSize]
	want := binary.LittleEndian.Uint32(data[len(data)-footerSize:])
	if got := hash.CRC32C(body); got != want {
		return 0, nil, corrupt("footer", &ChecksumMismatchError{Expected: want, Actual: got}, "file checksum")
	}

	r := &sliceReader{b: body, off: headerSize}
	sections := make(map[string]section, count)
	for i := 0; i < count; i++ {
		name, s, err := readSection(r)
		if err != nil {
			return 0, nil, corrupt(name, err, "section %d", i)
		}
		if _, dup := sections[name]; dup {
			return 0, nil, corrupt(name, nil, "duplicate section")
		}
		if k, known := fieldKinds[name]; known && k != s.kind {
			return 0, nil, corrupt(name, nil, "kind %d, want %d", s.kind, k)
		}
		sections[name] = s
	}
	if r.remaining() != 0 {
		return 0, nil, corrupt("footer", nil, "%d trailing bytes", r.remaining())
	}

	for name := range fieldKinds {
		if _, ok := sections[name]; !ok {
			return 0, nil, corrupt(name, nil, "missing")
		}
	}
	return comp, sections, nil
}

var errSection = errors.New("malformed section header")

func readSection(r *sliceReader) (string, section, error) {
	n, err := r.uint8()
	if err != nil {
		return "", section{}, errSection
	}
	nameBytes, err := r.bytes(int(n))
	if err != nil {
		return "", section{}, errSection
	}
	name := string(nameBytes)

	var s section
	k, err := r.uint8()
	if err != nil {
		return name, s, errSection
	}
	s.kind = kind(k)
	if s.kind.size() == 0 {
		return name, s, errSection
	}
	if s.count, err = r.uint64(); err != nil {
		return name, s, errSection
	}
	stored, err := r.uint64()
	if err != nil || stored > uint64(r.remaining()) {
		return name, s, errSection
	}
	if s.crc, err = r.uint32(); err != nil {
		return name, s, errSection
	}
	if s.payload, err = r.bytes(int(stored)); err != nil {
		return name, s, errSection
	}
	return name, s, nil
}
