package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/unity"
)

func TestLoadConfigFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cfg.json": `{"alignment": 4, "textAsset.binary": true, "fields.LanguageData.Flags": "uint32"}`,
		"cfg.yaml": "alignment: 4\ntextAsset.binary: true\nfields.LanguageData.Flags: uint32\n",
		"cfg.toml": "alignment = 4\n\"textAsset.binary\" = true\n\"fields.LanguageData.Flags\" = \"uint32\"\n",
	}
	for name, body := range files {
		cfg, err := loadConfig(writeFile(t, dir, name, []byte(body)))
		require.NoError(t, err, name)
		on, err := cfg.Flag(unity.OptTextAssetBinary)
		require.NoError(t, err, name)
		assert.True(t, on, name)
		assert.Equal(t, "uint32", cfg["fields.LanguageData.Flags"], name)

		reg, err := unity.RegisterTypes(cfg)
		require.NoError(t, err, name)
		assert.Equal(t, 4, reg.Options().Alignment, name)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.yaml", []byte("a: [1\n"))
	_, err = loadConfig(bad)
	assert.Error(t, err)
}

func TestLoadConfigEmptyYAML(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, t.TempDir(), "empty.yml", nil))
	require.NoError(t, err)
	assert.Equal(t, goasset.Config{}, cfg)
}
