package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	var config string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the asset types known under a configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.types(cmd.OutOrStdout(), config)
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "engine config file (.json, .yaml or .toml)")
	return cmd
}

func (a *app) types(stdout io.Writer, config string) error {
	reg, err := a.registry(config)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, n := range reg.Names() {
		d, err := reg.Lookup(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d fields\t%s\n", n, len(d.Fields), d.Doc)
	}
	return tw.Flush()
}
