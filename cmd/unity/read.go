package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	goasset "github.com/reoring/goasset"
)

type readOptions struct {
	input  string
	typ    string
	config string
	sel    string
	depth  int
	json   bool
	output string
}

func newReadCmd(a *app) *cobra.Command {
	o := &readOptions{}
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Extract Unity asset data into a JSON-like model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.read(cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "input data file")
	f.StringVarP(&o.typ, "type", "t", "", "asset data type (e.g. LanguageSourceAsset)")
	f.StringVarP(&o.config, "config", "c", "", "engine config file (.json, .yaml or .toml)")
	f.StringVarP(&o.sel, "select", "s", "", "JSON path transform (e.g. $.mSource.mTerms[*].Term)")
	f.IntVarP(&o.depth, "depth", "d", -1, "inspection depth; negative prints everything")
	f.BoolVarP(&o.json, "json", "j", false, "print as raw JSON")
	f.StringVarP(&o.output, "output", "o", "", "write JSON to file instead of stdout")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) read(stdout io.Writer, o *readOptions) error {
	c, err := a.codec(o.config, o.typ)
	if err != nil {
		return err
	}
	var v goasset.Value
	err = withFileSource(o.input, func(r *bufio.Reader) error {
		if v, err = c.Decode(r); err != nil {
			return err
		}
		if n, _ := io.Copy(io.Discard, r); n > 0 {
			a.log.Warn("ignoring bytes after the record", zap.String("input", o.input), zap.Int64("bytes", n))
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "read %s", o.input)
	}
	a.log.Debug("record decoded", zap.String("type", c.TypeName()), zap.String("input", o.input))

	if o.sel != "" {
		if v, err = selectPath(v, o.sel); err != nil {
			return err
		}
	}

	switch {
	case o.output != "":
		out, err := goasset.MarshalJSONIndent(v, "", "  ")
		if err != nil {
			return err
		}
		return withFileSink(o.output, func(w io.Writer) error {
			_, err := w.Write(out)
			return err
		})
	case o.json:
		out, err := goasset.MarshalJSONIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	default:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(prune(v, o.depth)); err != nil {
			return err
		}
		return enc.Close()
	}
}

// prune replaces containers nested deeper than depth with "[Object]" or
// "[Array]" markers. A negative depth keeps everything.
func prune(v goasset.Value, depth int) goasset.Value {
	if depth < 0 {
		return v
	}
	return pruneAt(v, depth)
}

func pruneAt(v goasset.Value, left int) goasset.Value {
	switch v.Kind() {
	case goasset.KindMap:
		if left < 0 {
			return goasset.String("[Object]")
		}
		m := goasset.NewMap()
		for _, k := range v.Map().Keys() {
			e, _ := v.Get(k)
			m.Set(k, pruneAt(e, left-1))
		}
		return goasset.MapValue(m)
	case goasset.KindList:
		if left < 0 {
			return goasset.String("[Array]")
		}
		items := make([]goasset.Value, 0, v.Len())
		for _, it := range v.Items() {
			items = append(items, pruneAt(it, left-1))
		}
		return goasset.List(items...)
	}
	return v
}
