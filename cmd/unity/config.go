package main

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	goasset "github.com/reoring/goasset"
)

// loadConfig reads an engine configuration file. The format follows the
// extension: .yaml/.yml, .toml, anything else is JSON. An empty path yields
// an empty configuration.
//
// Configuration keys contain dots ("textAsset.binary",
// "fields.LanguageData.Flags"), so TOML files must quote them.
func loadConfig(path string) (goasset.Config, error) {
	cfg := goasset.Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(data); err == nil {
			cfg = goasset.Config(tree.ToMap())
		}
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg == nil {
		cfg = goasset.Config{}
	}
	return cfg, nil
}
