package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
  path: ":memory:"
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "authenticated", cfg.Auth.Audience)
	assert.Equal(t, 5, cfg.Gamification.ModuleCompletionPoints)
	assert.Equal(t, "UTC", cfg.Gamification.Location().String())
	assert.Equal(t, 60, cfg.Gamification.LeaderboardCacheSeconds)
	assert.Equal(t, "skillpath-backend", cfg.Log.Service)
	assert.Equal(t, "logs/app.log", cfg.Log.Path)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.Log.Console)
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
database:
  driver: sqlite
auth:
  jwt_secret: short
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
gamification:
  timezone: Mars/Olympus
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestLoadConfigResolvesTimezone(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
gamification:
  timezone: Asia/Tokyo
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", cfg.Gamification.Location().String())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: oracle
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
