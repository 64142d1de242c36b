package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	var typ, config string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a type's editable model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.schema(cmd.OutOrStdout(), config, typ)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "asset data type (e.g. LanguageSourceAsset)")
	cmd.Flags().StringVarP(&config, "config", "c", "", "engine config file (.json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) schema(stdout io.Writer, config, typ string) error {
	c, err := a.codec(config, typ)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(c.JSONSchema(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
