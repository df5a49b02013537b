package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "sitepack.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// The default file must now exist with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, "Event Map", cfg.Title)
	assert.Len(t, cfg.Assets, 5)
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepack.yaml")
	partial := `
title: "My Map"
output:
  preview: out/preview.html
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "My Map", cfg.Title)
	assert.Equal(t, "out/preview.html", cfg.Output.Preview)
	// Missing sections fall back to defaults.
	assert.Equal(t, "dist/index.html", cfg.Output.Production)
	assert.Equal(t, "de", cfg.Data.ContentDefault.Locale)
	assert.Equal(t, "en", cfg.Data.ContentSecondary.Locale)
	assert.NotEmpty(t, cfg.Assets)
	assert.Greater(t, cfg.Snapshot.Width, 0)
}

func TestNormalizeAssetDefaults(t *testing.T) {
	cfg := &Config{
		Assets: []AssetModule{
			{Path: "a.css", Kind: KindStyle},
			{Path: "b.js", Kind: "javascript"},
		},
	}
	cfg.Normalize()

	// Names default to paths; unknown kinds default to script.
	assert.Equal(t, "a.css", cfg.Assets[0].Name)
	assert.Equal(t, KindScript, cfg.Assets[1].Kind)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepack.yaml")

	cfg := DefaultConfig()
	cfg.Title = "Round Trip"
	cfg.Serve.Listen = "127.0.0.1:9999"
	cfg.ExportICS = "dist/events.ics"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Title, loaded.Title)
	assert.Equal(t, cfg.Serve.Listen, loaded.Serve.Listen)
	assert.Equal(t, cfg.ExportICS, loaded.ExportICS)
	assert.Equal(t, cfg.Assets, loaded.Assets)
	assert.Equal(t, cfg.Data, loaded.Data)
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
