package libsvm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/xmcdata/csr"
)

const (
	defaultMaxLineSize = 64 << 20
	// ctxCheckInterval is how many lines are decoded between cancellation checks.
	ctxCheckInterval = 4096
)

// Header is the first line of a dataset file.
type Header struct {
	Rows   int
	Cols   int
	Labels int
}

// Result is the outcome of decoding a whole dataset file.
type Result struct {
	Header Header
	X      *csr.Matrix
	Y      *csr.Matrix
	// Skipped counts data lines dropped because they had no labels or no features.
	Skipped int
}

// Decoder reads a dataset from an input stream.
type Decoder struct {
	r           io.Reader
	maxLineSize int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxLineSize sets the longest accepted line in bytes.
func WithMaxLineSize(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxLineSize = n
		}
	}
}

// NewDecoder returns a decoder that reads from r.
func NewDecoder(r io.Reader, optFns ...DecoderOption) *Decoder {
	d := &Decoder{r: r, maxLineSize: defaultMaxLineSize}
	for _, fn := range optFns {
		fn(d)
	}
	return d
}

// Parse decodes a dataset and returns its feature and label matrices.
func Parse(r io.Reader) (X, Y *csr.Matrix, err error) {
	res, err := NewDecoder(r).Decode(context.Background())
	if err != nil {
		return nil, nil, err
	}
	return res.X, res.Y, nil
}

// ParseFile decodes the dataset stored at path.
func ParseFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewDecoder(f).Decode(ctx)
}

// Decode reads the header and all data lines.
func (d *Decoder) Decode(ctx context.Context) (*Result, error) {
	sc := bufio.NewScanner(d.r)
	sc.Buffer(make([]byte, 0, min(64*1024, d.maxLineSize)), d.maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, formatErrorf(1, err, "reading header")
		}
		return nil, formatErrorf(1, nil, "missing header")
	}
	hdr, err := parseHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	xb := csr.NewBuilder(hdr.Cols)
	yb := csr.NewBuilder(hdr.Labels)
	res := &Result{Header: hdr}

	var (
		cols   []uint32
		vals   []float32
		labels []uint32
	)
	lineNo := 1
	for sc.Scan() {
		lineNo++
		if lineNo%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var ok bool
		labels, cols, vals, ok, err = parseLine(sc.Text(), lineNo, hdr, labels[:0], cols[:0], vals[:0])
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		if xb.Rows() >= hdr.Rows {
			return nil, formatErrorf(lineNo, nil, "more data lines than the %d declared in the header", hdr.Rows)
		}
		if err := xb.AppendRow(cols, vals); err != nil {
			return nil, formatErrorf(lineNo, err, "features")
		}
		if err := yb.AppendRow(labels, nil); err != nil {
			return nil, formatErrorf(lineNo, err, "labels")
		}
		if xb.Rows() == 1 {
			reserve(xb, len(cols), hdr.Rows-1)
			reserve(yb, len(labels), hdr.Rows-1)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, formatErrorf(lineNo+1, err, "line exceeds %d bytes", d.maxLineSize)
		}
		return nil, err
	}

	if res.X, err = xb.Build(); err != nil {
		return nil, err
	}
	if res.Y, err = yb.Build(); err != nil {
		return nil, err
	}
	return res, nil
}

// maxReserve caps the entries reserved up front from a header's row count.
const maxReserve = 1 << 24

// reserve sizes b for rows more rows shaped like the first one.
func reserve(b *csr.Builder, perRow, rows int) {
	if perRow > 0 && rows > 0 {
		b.Grow(min(perRow*min(rows, maxReserve), maxReserve))
	}
}

// ReadHeader parses only the first line of r.
func ReadHeader(r io.Reader) (Header, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return Header{}, formatErrorf(1, err, "reading header")
	}
	return parseHeader(line)
}

func parseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Header{}, formatErrorf(1, nil, "header has %d fields, want 3", len(fields))
	}
	var dims [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Header{}, formatErrorf(1, err, "header field %q", f)
		}
		if n < 0 {
			return Header{}, formatErrorf(1, nil, "negative header field %d", n)
		}
		dims[i] = n
	}
	return Header{Rows: dims[0], Cols: dims[1], Labels: dims[2]}, nil
}

// parseLine decodes one data line into the given buffers. ok is false when
// the line carries no labels or no features and must be skipped.
func parseLine(line string, lineNo int, hdr Header, labels, cols []uint32, vals []float32) (_ []uint32, _ []uint32, _ []float32, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return labels, cols, vals, false, nil
	}

	// A line without labels starts directly with a feature token.
	featureTokens := fields
	if !strings.Contains(fields[0], ":") {
		for _, tok := range strings.Split(fields[0], ",") {
			id, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				return nil, nil, nil, false, formatErrorf(lineNo, err, "label %q", tok)
			}
			if int(id) >= hdr.Labels {
				return nil, nil, nil, false, formatErrorf(lineNo, nil, "label %d out of range [0, %d)", id, hdr.Labels)
			}
			labels = append(labels, uint32(id))
		}
		featureTokens = fields[1:]
	}

	for _, tok := range featureTokens {
		parts := strings.Split(tok, ":")
		if len(parts) != 2 {
			return nil, nil, nil, false, formatErrorf(lineNo, nil, "feature token %q is not col:val", tok)
		}
		col, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, nil, nil, false, formatErrorf(lineNo, err, "feature column %q", parts[0])
		}
		if int(col) >= hdr.Cols {
			return nil, nil, nil, false, formatErrorf(lineNo, nil, "feature column %d out of range [0, %d)", col, hdr.Cols)
		}
		val, err := strconv.ParseFloat(parts[1], 32)
		if err != nil {
			return nil, nil, nil, false, formatErrorf(lineNo, err, "feature value %q", parts[1])
		}
		if val < 0 || math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, nil, nil, false, formatErrorf(lineNo, nil, "feature value %q is not a finite non-negative number", parts[1])
		}
		cols = append(cols, uint32(col))
		vals = append(vals, float32(val))
	}

	if len(labels) == 0 || len(cols) == 0 {
		return labels, cols, vals, false, nil
	}

	// labels form a set
	slices.Sort(labels)
	labels = slices.Compact(labels)
	return labels, cols, vals, true, nil
}

// String implements fmt.Stringer.
func (h Header) String() string {
	return fmt.Sprintf("%d %d %d", h.Rows, h.Cols, h.Labels)
}
