package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/unity"
)

type app struct {
	logLevel  string
	logFormat string
	logFile   string
	log       *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "unity",
		Short: "Handling Unity engine files",
		Long: `unity converts serialized Unity asset records to and from an editable tree.

Engine options (byte order, length prefixes, alignment, engine version) and
type overrides come from a JSON, YAML or TOML config file given with -c.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := newLogger(logOptions{
				Level:  a.logLevel,
				Format: a.logFormat,
				File:   a.logFile,
			}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "warn", "debug | info | warn | error")
	pf.StringVar(&a.logFormat, "log-format", "console", "console | json")
	pf.StringVar(&a.logFile, "log-file", "", "also append logs to this file (rotated)")

	root.AddCommand(newReadCmd(a), newWriteCmd(a), newTypesCmd(a), newSchemaCmd(a))
	return root
}

func (a *app) registry(configPath string) (*goasset.Registry, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	reg, err := unity.RegisterTypes(cfg, goasset.WithLogger(a.log))
	if err != nil {
		return nil, errors.Wrap(err, "register types")
	}
	return reg, nil
}

func (a *app) codec(configPath, typ string) (*goasset.Codec, error) {
	reg, err := a.registry(configPath)
	if err != nil {
		return nil, err
	}
	c, err := goasset.NewResolver(reg, goasset.WithLogger(a.log)).Resolve(typ)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", typ)
	}
	return c, nil
}
