package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxStep bounds a single allocation step when reading length-prefixed
// payloads so that a corrupt length cannot force a huge up-front allocation.
const maxStep = 64 << 10

var (
	ErrVarintOverflow   = errors.New("wire: 7-bit varint exceeds 32 bits")
	ErrVarintNonMinimal = errors.New("wire: 7-bit varint is not minimally encoded")
)

// ShortReadError reports that the source ended before a read completed.
type ShortReadError struct {
	Want int64 // bytes requested by the read
	Got  int64 // bytes actually available
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("wire: need %d bytes, got %d", e.Want, e.Got)
}

// Unwrap lets callers match io.ErrUnexpectedEOF.
func (e *ShortReadError) Unwrap() error { return io.ErrUnexpectedEOF }

// Reader is a forward-only cursor over an io.Reader. It never rewinds and
// never reads ahead, so the remainder of the underlying stream stays
// available to the caller after a record has been consumed. Wrap slow
// sources in a bufio.Reader before handing them over.
type Reader struct {
	r       io.Reader
	order   binary.ByteOrder
	off     int64
	scratch [8]byte
}

// NewReader returns a Reader positioned at offset 0 of r.
func NewReader(r io.Reader, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{r: r, order: order}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

// ReadFull fills p completely or fails with *ShortReadError (for an exhausted
// source) or the underlying I/O error.
func (r *Reader) ReadFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ShortReadError{Want: int64(len(p)), Got: int64(n)}
	}
	return err
}

// Bytes reads exactly n bytes into a freshly allocated slice. Memory grows in
// bounded steps, so an oversized n fails on the short read instead of on the
// allocation.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("wire: negative length %d", n)
	}
	if n <= maxStep {
		out := make([]byte, n)
		if err := r.ReadFull(out); err != nil {
			return nil, r.rebase(err, 0, int64(n))
		}
		return out, nil
	}
	out := make([]byte, 0, maxStep)
	for len(out) < n {
		step := n - len(out)
		if step > maxStep {
			step = maxStep
		}
		start := len(out)
		out = append(out, make([]byte, step)...)
		if err := r.ReadFull(out[start:]); err != nil {
			return nil, r.rebase(err, int64(start), int64(n))
		}
	}
	return out, nil
}

// rebase reports a short read relative to the whole request rather than the
// current step.
func (r *Reader) rebase(err error, done, want int64) error {
	var se *ShortReadError
	if errors.As(err, &se) {
		return &ShortReadError{Want: want, Got: done + se.Got}
	}
	return err
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.ReadFull(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// Uint16 reads a 2-byte integer in the reader's byte order.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.ReadFull(r.scratch[:2]); err != nil {
		return 0, err
	}
	return r.order.Uint16(r.scratch[:2]), nil
}

// Uint32 reads a 4-byte integer in the reader's byte order.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.ReadFull(r.scratch[:4]); err != nil {
		return 0, err
	}
	return r.order.Uint32(r.scratch[:4]), nil
}

// Uint64 reads an 8-byte integer in the reader's byte order.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.ReadFull(r.scratch[:8]); err != nil {
		return 0, err
	}
	return r.order.Uint64(r.scratch[:8]), nil
}

// Uint reads an unsigned integer of the given width (1, 2, 4 or 8 bytes).
func (r *Reader) Uint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := r.Uint8()
		return uint64(v), err
	case 2:
		v, err := r.Uint16()
		return uint64(v), err
	case 4:
		v, err := r.Uint32()
		return uint64(v), err
	case 8:
		return r.Uint64()
	default:
		return 0, fmt.Errorf("wire: unsupported integer width %d", width)
	}
}

// Uvarint7 reads a 7-bit encoded integer (low groups first, high bit set on
// every byte except the last) of at most 32 bits. Encodings with redundant
// trailing zero groups are rejected so that a re-encode is byte-identical.
func (r *Reader) Uvarint7() (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		if i == 4 && b > 0x0f {
			return 0, ErrVarintOverflow
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, ErrVarintNonMinimal
			}
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

// PaddingTo returns how many bytes are needed to advance the current offset to
// the next multiple of align.
func (r *Reader) PaddingTo(align int) int { return paddingTo(r.off, align) }

func paddingTo(off int64, align int) int {
	if align <= 1 {
		return 0
	}
	return int((int64(align) - off%int64(align)) % int64(align))
}
