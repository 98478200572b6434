package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how section payloads are stored.
type Compression uint8

const (
	// CompressionNone stores raw little-endian arrays.
	CompressionNone Compression = 0
	// CompressionLZ4 stores LZ4 blocks (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores ZSTD blocks (smaller).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool { return c <= CompressionZSTD }

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("persistence: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block layout: [uncompressed size u32][compressed size u32][bytes...].
// A compressed size of 0 marks a block stored raw.
const blockHeaderSize = 8

var errBlock = errors.New("malformed block")

// compressPayload splits data into blocks of at most blockSize bytes and
// compresses each one. Blocks that do not shrink below 90% are stored raw.
func compressPayload(data []byte, c Compression, blockSize int) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	out := make([]byte, 0, len(data)/2+blockHeaderSize)
	for start := 0; start < len(data); start += blockSize {
		block := data[start:min(start+blockSize, len(data))]

		var packed []byte
		switch c {
		case CompressionLZ4:
			buf := make([]byte, lz4.CompressBlockBound(len(block)))
			n, err := lz4.CompressBlock(block, buf, nil)
			if err != nil {
				return nil, err
			}
			packed = buf[:n]
		case CompressionZSTD:
			enc := getZstdEncoder()
			packed = enc.EncodeAll(block, nil)
			zstdEncoderPool.Put(enc)
		}

		var hdr [blockHeaderSize]byte
		binary.LittleEndian.PutUint32(hdr[0:], uint32(len(block)))
		if len(packed) == 0 || float64(len(packed)) > float64(len(block))*0.9 {
			out = append(out, hdr[:]...)
			out = append(out, block...)
			continue
		}
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(packed)))
		out = append(out, hdr[:]...)
		out = append(out, packed...)
	}
	return out, nil
}

// rawTotal walks the block headers and sums their uncompressed sizes.
func rawTotal(stored []byte) (uint64, error) {
	var total uint64
	for off := 0; off < len(stored); {
		if len(stored)-off < blockHeaderSize {
			return 0, fmt.Errorf("%w: truncated header at %d", errBlock, off)
		}
		rawSize := binary.LittleEndian.Uint32(stored[off:])
		packedSize := int(binary.LittleEndian.Uint32(stored[off+4:]))
		if packedSize == 0 {
			packedSize = int(rawSize)
		}
		off += blockHeaderSize
		if len(stored)-off < packedSize {
			return 0, fmt.Errorf("%w: truncated block at %d", errBlock, off)
		}
		off += packedSize
		total += uint64(rawSize)
	}
	return total, nil
}

// decompressPayload reverses compressPayload and checks that exactly want
// bytes are produced.
func decompressPayload(stored []byte, c Compression, want int) ([]byte, error) {
	if c == CompressionNone {
		if len(stored) != want {
			return nil, fmt.Errorf("%w: %d bytes stored, want %d", errBlock, len(stored), want)
		}
		return stored, nil
	}

	total, err := rawTotal(stored)
	if err != nil {
		return nil, err
	}
	if total != uint64(want) {
		return nil, fmt.Errorf("%w: blocks hold %d bytes, want %d", errBlock, total, want)
	}

	out := make([]byte, 0, want)
	for off := 0; off < len(stored); {
		if len(stored)-off < blockHeaderSize {
			return nil, fmt.Errorf("%w: truncated header at %d", errBlock, off)
		}
		rawSize := int(binary.LittleEndian.Uint32(stored[off:]))
		packedSize := int(binary.LittleEndian.Uint32(stored[off+4:]))
		off += blockHeaderSize
		if len(out)+rawSize > want {
			return nil, fmt.Errorf("%w: blocks exceed %d bytes", errBlock, want)
		}

		if packedSize == 0 {
			if len(stored)-off < rawSize {
				return nil, fmt.Errorf("%w: truncated raw block", errBlock)
			}
			out = append(out, stored[off:off+rawSize]...)
			off += rawSize
			continue
		}

		if len(stored)-off < packedSize {
			return nil, fmt.Errorf("%w: truncated compressed block", errBlock)
		}
		packed := stored[off : off+packedSize]
		off += packedSize

		switch c {
		case CompressionLZ4:
			dst := out[len(out) : len(out)+rawSize]
			n, err := lz4.UncompressBlock(packed, dst)
			if err != nil {
				return nil, err
			}
			if n != rawSize {
				return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", errBlock, n, rawSize)
			}
			out = out[:len(out)+rawSize]
		case CompressionZSTD:
			dec := getZstdDecoder()
			decoded, err := dec.DecodeAll(packed, make([]byte, 0, rawSize))
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, err
			}
			if len(decoded) != rawSize {
				return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", errBlock, len(decoded), rawSize)
			}
			out = append(out, decoded...)
		}
	}

	if len(out) != want {
		return nil, fmt.Errorf("%w: %d bytes decoded, want %d", errBlock, len(out), want)
	}
	return out, nil
}
