package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRootCmd() *cobra.Command {
	viper.Reset()
	cmd := &cobra.Command{Use: "assetgraph"}
	InitFlags(cmd)
	return cmd
}

func TestLoadConfigs_Defaults(t *testing.T) {
	cwd, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(cwd)

	cfg, err := LoadConfigs(newRootCmd(), cwd)
	require.NoError(t, err)

	assert.Equal(t, "/static", cfg.Prefix)
	assert.Equal(t, ":8080", cfg.Address)
	assert.True(t, cfg.EnableCache)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, "single-pass", cfg.Closure)
	assert.Empty(t, cfg.Directories)
}

func TestLoadConfigs_FileEnvAndFlags(t *testing.T) {
	cwd, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(cwd)

	yaml := `prefix: /assets
closure: transitive
minify: true
directories:
  - alias: site
    path: ./public
files:
  - alias: favicon.ico
    path: ./brand/favicon.ico
extensions:
  md: text/markdown
css_properties:
  cursor: none
  shape-outside: img-src
`
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "static-config.yaml"), []byte(yaml), 0644))
	t.Setenv("STATIC_ADDRESS", ":9090")

	cmd := newRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("dir", "vendor=./node_modules/lib"))
	require.NoError(t, cmd.PersistentFlags().Set("log_level", "debug"))

	cfg, err := LoadConfigs(cmd, cwd)
	require.NoError(t, err)

	assert.Equal(t, "/assets", cfg.Prefix)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "transitive", cfg.Closure)
	assert.True(t, cfg.Minify)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []models.StaticDirectory{
		{Alias: "site", Path: "./public"},
		{Alias: "vendor", Path: "./node_modules/lib"},
	}, cfg.Directories)
	assert.Equal(t, []models.StaticFile{{Alias: "favicon.ico", Path: "./brand/favicon.ico"}}, cfg.Files)
	assert.Equal(t, "text/markdown", cfg.Extensions["md"])

	overrides, err := cfg.CSSOverrides()
	require.NoError(t, err)
	assert.Equal(t, models.DirectiveNone, overrides["cursor"])
	assert.Equal(t, models.ImgSrc, overrides["shape-outside"])
}

func TestLoadConfigs_RejectsInvalidValues(t *testing.T) {
	cwd, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(cwd)

	cmd := newRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("closure", "fixpoint"))
	_, err = LoadConfigs(cmd, cwd)
	assert.Error(t, err)

	cmd = newRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("config", filepath.Join(cwd, "missing.yaml")))
	_, err = LoadConfigs(cmd, cwd)
	assert.Error(t, err)
}

func TestParseMount(t *testing.T) {
	alias, path, err := ParseMount("site/=./public")
	require.NoError(t, err)
	assert.Equal(t, "site", alias)
	assert.Equal(t, "./public", path)

	alias, path, err = ParseMount("./public")
	require.NoError(t, err)
	assert.Equal(t, "", alias)
	assert.Equal(t, "./public", path)

	_, _, err = ParseMount("site=")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, pterm.LogLevelWarn, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
