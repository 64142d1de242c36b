package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// withFileSource opens path for buffered reading for the duration of fn.
func withFileSource(path string, fn func(r *bufio.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer f.Close()
	return fn(bufio.NewReader(f))
}

// withFileSink hands fn a temporary file next to path and renames it into
// place only when fn and the final flush succeed. On failure path is left
// untouched.
func withFileSink(path string, fn func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "write output")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "rename output")
	}
	return nil
}
