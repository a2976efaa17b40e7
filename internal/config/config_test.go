package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray homestock.* file is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadServerDefaults(t *testing.T) {
	chdir(t)

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "homestock.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Zero(t, cfg.BackupInterval)
	assert.Equal(t, 30, cfg.BackupRetentionDays)
	assert.Equal(t, "auto", cfg.S3.Region)

	assert.Error(t, cfg.Validate(), "jwt secret is required")
}

func TestLoadServerEnv(t *testing.T) {
	chdir(t)
	t.Setenv("HOMESTOCK_ADDR", ":9090")
	t.Setenv("HOMESTOCK_JWT_SECRET", "s3cret")
	t.Setenv("HOMESTOCK_RATE_LIMIT", "10")
	t.Setenv("HOMESTOCK_BACKUP_INTERVAL", "6h")
	t.Setenv("HOMESTOCK_S3_BUCKET", "pantry")
	t.Setenv("HOMESTOCK_BACKUP_PASSPHRASE", "pass")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 10, cfg.RateLimit)

	b := cfg.Backup()
	assert.Equal(t, 6*time.Hour, b.Interval)
	assert.Equal(t, "pantry", b.S3.Bucket)
	assert.Equal(t, "pass", b.Passphrase)
	assert.Equal(t, 30, b.RetentionDays)
}

func TestLoadServerFileWithEnvOverride(t *testing.T) {
	dir := chdir(t)
	content := "DB_PATH=/var/lib/homestock.db\nJWT_SECRET=fromfile\nLOG_FORMAT=json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "homestock.env"), []byte(content), 0600))
	t.Setenv("HOMESTOCK_JWT_SECRET", "fromenv")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/homestock.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "fromenv", cfg.JWTSecret)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	chdir(t)
	_, err := LoadServer("nope.yaml")
	assert.Error(t, err)
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Server{JWTSecret: "x", RateLimit: -1}
	assert.Error(t, cfg.Validate())
}

func TestLoadClient(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "client.yaml"), []byte("url: http://pantry.local:8080\napi_key: abc\n"), 0600))

	cfg, err := LoadClient(filepath.Join(dir, "client.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://pantry.local:8080", cfg.URL)
	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, "homestock.log", cfg.LogFile)

	t.Setenv("HOMESTOCK_URL", "http://other:1")
	cfg, err = LoadClient("")
	require.NoError(t, err)
	assert.Equal(t, "http://other:1", cfg.URL)
	assert.Equal(t, "info", cfg.LogLevel)
}
