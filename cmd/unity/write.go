package main

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	goasset "github.com/reoring/goasset"
)

type writeOptions struct {
	input  string
	typ    string
	config string
	output string
}

func newWriteCmd(a *app) *cobra.Command {
	o := &writeOptions{}
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write Unity asset JSON or YAML as an asset data file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.write(o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "input JSON or YAML file")
	f.StringVarP(&o.typ, "type", "t", "", "asset data type (e.g. LanguageSourceAsset)")
	f.StringVarP(&o.output, "output", "o", "", "output asset file")
	f.StringVarP(&o.config, "config", "c", "", "engine config file (.json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) write(o *writeOptions) error {
	c, err := a.codec(o.config, o.typ)
	if err != nil {
		return err
	}
	var v goasset.Value
	err = withFileSource(o.input, func(r *bufio.Reader) error {
		switch strings.ToLower(filepath.Ext(o.input)) {
		case ".yaml", ".yml":
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			v, err = goasset.ParseYAML(data)
			return err
		default:
			v, err = goasset.ReadJSON(r)
			return err
		}
	})
	if err != nil {
		return errors.Wrapf(err, "parse %s", o.input)
	}

	var n int64
	err = withFileSink(o.output, func(w io.Writer) error {
		var err error
		n, err = c.EncodeTo(w, c.Normalize(v))
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "write %s", o.output)
	}
	a.log.Info("asset written", zap.String("type", c.TypeName()), zap.String("output", o.output), zap.Int64("bytes", n))
	return nil
}
