package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray config file is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "rmapi", cfg.Remarkable.RmapiPath)
	assert.Equal(t, "Readwise", cfg.Remarkable.Folder)
	assert.Equal(t, []string{"new", "later", "shortlist"}, cfg.Sync.Locations)
	assert.Equal(t, "remarkable", cfg.Sync.Tag)
	assert.Equal(t, "exported_documents.txt", cfg.Sync.LedgerPath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remsync.yaml")
	content := `
readwise:
  token: secret-token
remarkable:
  folder: Articles
sync:
  locations: [new]
  tag: tablet
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Readwise.Token)
	assert.Equal(t, "Articles", cfg.Remarkable.Folder)
	assert.Equal(t, []string{"new"}, cfg.Sync.Locations)
	assert.Equal(t, "tablet", cfg.Sync.Tag)
	// Untouched keys keep their defaults.
	assert.Equal(t, "rmapi", cfg.Remarkable.RmapiPath)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REMSYNC_READWISE_TOKEN", "env-token")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Readwise.Token)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Readwise: Readwise{Token: "tok"},
		Sync:     Sync{Locations: []string{"new"}, Tag: "remarkable"},
	}
	require.NoError(t, cfg.Validate())

	noToken := *cfg
	noToken.Readwise.Token = ""
	assert.Error(t, noToken.Validate())

	noLocations := *cfg
	noLocations.Sync.Locations = nil
	assert.Error(t, noLocations.Validate())

	noTag := *cfg
	noTag.Sync.Tag = ""
	assert.Error(t, noTag.Validate())
}
