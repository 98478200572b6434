package persistence

const (
	// Magic opens every archive.
	Magic = "XMC1"
	// Version is the current archive format version.
	Version uint16 = 1

	headerSize = 16
	footerSize = 4

	defaultBlockSize = 1 << 20
)

// Section names.
const (
	FieldData    = "data"
	FieldIndices = "indices"
	FieldIndptr  = "indptr"
	FieldShape   = "shape"
)

type kind uint8

const (
	kindFloat32 kind = 1
	kindUint32  kind = 2
	kindInt64   kind = 3
)

func (k kind) size() int {
	switch k {
	case kindFloat32, kindUint32:
		return 4
	case kindInt64:
		return 8
	default:
		return 0
	}
}

var fieldKinds = map[string]kind{
	FieldData:    kindFloat32,
	FieldIndices: kindUint32,
	FieldIndptr:  kindUint32,
	FieldShape:   kindInt64,
}

// Options configure archive writing and blob transfers.
type Options struct {
	Compression Compression
	// BlockSize is the uncompressed size of a compression block.
	BlockSize int
	// IO throttles blob transfers; nil means unlimited.
	IO IOLimiter
}

// Option mutates Options.
type Option func(*Options)

// WithCompression selects the section compression.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithBlockSize sets the compression block size in bytes.
func WithBlockSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BlockSize = n
		}
	}
}

// WithIOLimiter throttles Save and Load against a blob store.
func WithIOLimiter(l IOLimiter) Option {
	return func(o *Options) { o.IO = l }
}

func applyOptions(optFns []Option) Options {
	o := Options{Compression: CompressionNone, BlockSize: defaultBlockSize}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
