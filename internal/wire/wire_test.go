package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, chunkSize int, fn func(w *Writer)) ([][]byte, []byte) {
	t.Helper()
	var chunks [][]byte
	w := NewWriter(binary.LittleEndian, chunkSize, func(p []byte) bool {
		chunks = append(chunks, p)
		return true
	})
	fn(w)
	w.Flush()
	return chunks, bytes.Join(chunks, nil)
}

func TestReaderIntegersBothOrders(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	le := NewReader(bytes.NewReader(data), binary.LittleEndian)
	v16, err := le.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)
	v32, err := le.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x06050403), v32)
	assert.Equal(t, int64(6), le.Offset())

	be := NewReader(bytes.NewReader(data), binary.BigEndian)
	v64, err := be.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v64)
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}), nil)
	_, err := r.Uint32()
	require.Error(t, err)

	var se *ShortReadError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(4), se.Want)
	assert.Equal(t, int64(2), se.Got)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReaderBytesLargeShort(t *testing.T) {
	data := make([]byte, maxStep+10)
	r := NewReader(bytes.NewReader(data), nil)
	_, err := r.Bytes(maxStep * 3)

	var se *ShortReadError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(maxStep*3), se.Want)
	assert.Equal(t, int64(maxStep+10), se.Got)
}

func TestReaderBytesLarge(t *testing.T) {
	data := bytes.Repeat([]byte{0xab}, maxStep*2+3)
	r := NewReader(bytes.NewReader(data), nil)
	got, err := r.Bytes(len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestUvarint7RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7f, 0x80, 300, 0x3fff, 0x4000, 1 << 28, 0xffffffff} {
		_, enc := collect(t, 0, func(w *Writer) { w.PutUvarint7(v) })
		got, err := NewReader(bytes.NewReader(enc), nil).Uvarint7()
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got)
	}
}

func TestUvarint7Rejects(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0x80, 0x00}), nil).Uvarint7()
	assert.ErrorIs(t, err, ErrVarintNonMinimal)

	_, err = NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x1f}), nil).Uvarint7()
	assert.ErrorIs(t, err, ErrVarintOverflow)

	_, err = NewReader(bytes.NewReader([]byte{0x80}), nil).Uvarint7()
	var se *ShortReadError
	assert.True(t, errors.As(err, &se))
}

func TestWriterChunking(t *testing.T) {
	payload := bytes.Repeat([]byte("abc"), 10)
	chunks, all := collect(t, 7, func(w *Writer) {
		w.Put(payload)
		w.PutUint32(0xdeadbeef)
	})
	require.Equal(t, append(append([]byte{}, payload...), 0xef, 0xbe, 0xad, 0xde), all)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 7, "chunk %d", i)
	}
	assert.Len(t, chunks, 5)
}

func TestWriterChunksAreIndependent(t *testing.T) {
	chunks, _ := collect(t, 2, func(w *Writer) {
		w.Put([]byte{1, 2, 3, 4})
	})
	require.Len(t, chunks, 2)
	chunks[0][0] = 9
	assert.Equal(t, []byte{3, 4}, chunks[1])
}

func TestWriterStops(t *testing.T) {
	calls := 0
	w := NewWriter(nil, 1, func(p []byte) bool {
		calls++
		return false
	})
	w.Put([]byte{1, 2, 3})
	w.Flush()
	assert.True(t, w.Stopped())
	assert.Equal(t, 1, calls)
}

func TestPadding(t *testing.T) {
	_, all := collect(t, 0, func(w *Writer) {
		w.PutUint8(1)
		w.PutZeros(w.PaddingTo(4))
		assert.Equal(t, 0, w.PaddingTo(4))
		w.PutUint8(2)
	})
	assert.Equal(t, []byte{1, 0, 0, 0, 2}, all)

	r := NewReader(bytes.NewReader(all), nil)
	_, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, 3, r.PaddingTo(4))
	assert.Equal(t, 0, r.PaddingTo(0))
}
