package wire

import (
	"encoding/binary"
)

// DefaultChunkSize is the chunk size used when a Writer is created with a
// non-positive size.
const DefaultChunkSize = 64 << 10

// Writer accumulates encoded bytes and hands them to an emit callback in
// chunks of at most the configured size. Every emitted chunk is a fresh
// slice owned by the receiver. When emit returns false the writer stops and
// drops all further output.
type Writer struct {
	order   binary.ByteOrder
	size    int
	buf     []byte
	off     int64
	emit    func([]byte) bool
	stopped bool
	scratch [8]byte
}

// NewWriter returns a Writer that emits chunks of at most chunkSize bytes.
func NewWriter(order binary.ByteOrder, chunkSize int, emit func([]byte) bool) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Writer{order: order, size: chunkSize, emit: emit}
}

// Offset returns the number of bytes written so far, emitted or pending.
func (w *Writer) Offset() int64 { return w.off }

// Stopped reports whether the receiver asked to stop.
func (w *Writer) Stopped() bool { return w.stopped }

// Put appends p, emitting full chunks as they fill up.
func (w *Writer) Put(p []byte) {
	w.off += int64(len(p))
	for len(p) > 0 && !w.stopped {
		if w.buf == nil {
			w.buf = make([]byte, 0, w.size)
		}
		n := copy(w.buf[len(w.buf):w.size], p)
		w.buf = w.buf[:len(w.buf)+n]
		p = p[n:]
		if len(w.buf) == w.size {
			w.emitPending()
		}
	}
}

// PutUint8 appends one byte.
func (w *Writer) PutUint8(v uint8) {
	w.scratch[0] = v
	w.Put(w.scratch[:1])
}

// PutUint16 appends a 2-byte integer in the writer's byte order.
func (w *Writer) PutUint16(v uint16) {
	w.order.PutUint16(w.scratch[:2], v)
	w.Put(w.scratch[:2])
}

// PutUint32 appends a 4-byte integer in the writer's byte order.
func (w *Writer) PutUint32(v uint32) {
	w.order.PutUint32(w.scratch[:4], v)
	w.Put(w.scratch[:4])
}

// PutUint64 appends an 8-byte integer in the writer's byte order.
func (w *Writer) PutUint64(v uint64) {
	w.order.PutUint64(w.scratch[:8], v)
	w.Put(w.scratch[:8])
}

// PutUint appends an unsigned integer of the given width (1, 2, 4 or 8).
// Bits above the width are discarded; callers range-check beforehand.
func (w *Writer) PutUint(width int, v uint64) {
	switch width {
	case 1:
		w.PutUint8(uint8(v))
	case 2:
		w.PutUint16(uint16(v))
	case 4:
		w.PutUint32(uint32(v))
	case 8:
		w.PutUint64(v)
	}
}

// PutUvarint7 appends v as a minimal 7-bit encoded integer.
func (w *Writer) PutUvarint7(v uint32) {
	n := 0
	for v >= 0x80 {
		w.scratch[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	w.scratch[n] = byte(v)
	w.Put(w.scratch[:n+1])
}

// PutZeros appends n zero bytes.
func (w *Writer) PutZeros(n int) {
	var zero [16]byte
	for n > 0 {
		step := n
		if step > len(zero) {
			step = len(zero)
		}
		w.Put(zero[:step])
		n -= step
	}
}

// PaddingTo returns how many bytes are needed to advance the current offset to
// the next multiple of align.
func (w *Writer) PaddingTo(align int) int { return paddingTo(w.off, align) }

// Flush emits any pending bytes as a final, possibly short, chunk.
func (w *Writer) Flush() {
	if len(w.buf) > 0 && !w.stopped {
		w.emitPending()
	}
}

func (w *Writer) emitPending() {
	chunk := w.buf
	w.buf = nil
	if !w.emit(chunk) {
		w.stopped = true
	}
}
