// Package wire holds the byte-level primitives shared by every codec: a
// forward-only Reader over an io.Reader and a chunking Writer. Neither type
// knows about field layouts; callers translate errors into their own model.
package wire
