package guidepress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidepress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site_name: Wander
site_url: https://wander.example/
guide_cache_ttl: 10m
activation_offset: 120
header_clearance: 90
`), 0o644))
	t.Setenv("GUIDEPRESS_SITE_NAME", "Wander Guides")
	t.Setenv("GUIDEPRESS_HEADER_CLEARANCE", "64")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Wander Guides", cfg.Name)
	assert.Equal(t, "https://wander.example", cfg.URL)
	assert.Equal(t, 10*time.Minute, cfg.GuideCacheTTL)
	assert.Equal(t, 120.0, cfg.ActivationOffset)
	assert.Equal(t, 64.0, cfg.HeaderClearance)
	assert.Equal(t, ":3000", cfg.Addr)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Guides", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "data/guides.db", cfg.DatabasePath)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, 5*time.Minute, cfg.GuideCacheTTL)
	assert.Equal(t, 150.0, cfg.ActivationOffset)
	assert.Equal(t, 80.0, cfg.HeaderClearance)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site_name: [unterminated"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := SiteConfig{}
	cfg.setDefaults()
	assert.Error(t, cfg.Validate())

	cfg.AdminPassword = "pw"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.HeaderClearance = -1
	assert.Error(t, cfg.Validate())
}
