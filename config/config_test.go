package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbith/personnel-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "personnel.db", cfg.DBPath)
	assert.Equal(t, "190.6", cfg.TimeFund)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "190.6", cfg.TimeFundDecimal().String())
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personnel.yaml")
	content := []byte("port: 9000\ndb_path: /tmp/test.db\ncors:\n  allowed_origins:\n    - http://example.com\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, []string{"http://example.com"}, cfg.CORS.AllowedOrigins)
	// untouched keys keep their defaults
	assert.Equal(t, "190.6", cfg.TimeFund)
}

func TestLoad_EnvWinsOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0o600))

	t.Setenv("PERSONNEL_PORT", "9100")
	t.Setenv("PERSONNEL_DB", ":memory:")
	t.Setenv("PERSONNEL_TIME_FUND", "160")
	t.Setenv("PERSONNEL_CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "160", cfg.TimeFund)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsBadTimeFund(t *testing.T) {
	t.Setenv("PERSONNEL_TIME_FUND", "not-a-number")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time_fund")
}

func TestLoad_UnparseableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [broken"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
