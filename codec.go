package goasset

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/reoring/goasset/internal/wire"
)

// Codec is a type descriptor bound to one configuration. It holds no
// per-call state; concurrent calls on independent sources are safe.
type Codec struct {
	typ  string
	root *recordNode
	p    engineParams
}

// TypeName returns the name the codec was resolved for.
func (c *Codec) TypeName() string { return c.typ }

// Decode reads exactly one record from r. Bytes after the record are left
// unread, so several records can be decoded from one stream in turn.
func (c *Codec) Decode(r io.Reader) (Value, error) {
	v, _, err := c.decode(r)
	return v, err
}

// DecodeBytes decodes b, which must hold exactly one record.
func (c *Codec) DecodeBytes(b []byte) (Value, error) {
	br := bytes.NewReader(b)
	v, d, err := c.decode(br)
	if err != nil {
		return Value{}, err
	}
	if n := br.Len(); n > 0 {
		return Value{}, d.malformed(d.r.Offset(), fmt.Sprintf("%d trailing bytes after the record", n))
	}
	return v, nil
}

func (c *Codec) decode(r io.Reader) (Value, *decoder, error) {
	d := &decoder{r: wire.NewReader(r, c.p.order), typ: c.typ}
	v, err := c.root.decode(d)
	return v, d, err
}

// Check reports whether v can be encoded: a MissingField or ShapeMismatch
// error names the first offending path. Encode runs it before any output.
func (c *Codec) Check(v Value) error {
	ck := &checker{typ: c.typ}
	return c.root.check(ck, v)
}

// Normalize returns a copy of v with loosely typed leaves coerced to what the
// type declares: integral floats to integers, integers to floats, 0/1 to
// booleans, base64 text to bytes and "NaN"/"+Inf"/"-Inf" to floats. Values
// that cannot be coerced are kept as they are, for Check to report.
// Values from Decode never need it.
func (c *Codec) Normalize(v Value) Value { return c.root.normalize(v) }

// Encode returns the record for v as a lazy sequence of chunks. Chunk
// boundaries carry no meaning; only their concatenation does. When v does
// not fit the type, the sequence yields a single error and no chunks, so a
// sink never sees part of an invalid record. Each chunk is a fresh slice the
// consumer may retain. Ranging again re-encodes from the start.
func (c *Codec) Encode(v Value) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if err := c.Check(v); err != nil {
			yield(nil, err)
			return
		}
		w := wire.NewWriter(c.p.order, c.p.chunkSize, func(b []byte) bool { return yield(b, nil) })
		c.root.encode(&encoder{w: w}, v)
		w.Flush()
	}
}

// EncodeTo writes the chunks of v to w in order and returns the number of
// bytes written. When v is invalid nothing is written.
func (c *Codec) EncodeTo(w io.Writer, v Value) (int64, error) {
	var total int64
	for chunk, err := range c.Encode(v) {
		if err != nil {
			return total, err
		}
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// EncodeBytes returns the whole record for v in one buffer.
func (c *Codec) EncodeBytes(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.EncodeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
