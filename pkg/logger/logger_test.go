package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skillpath_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.Log = config.LogConfig{
		Service:    "skillpath-test",
		Path:       filepath.Join(t.TempDir(), "nested", "app.log"),
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	t.Cleanup(InitNop)
	return cfg
}

func TestInitLoggerWritesJSONWithService(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, InitLogger(cfg))

	Log.Debug("hidden below info")
	Log.Info("points awarded")
	_ = Log.Sync()

	raw, err := os.ReadFile(cfg.Log.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "points awarded", entry["msg"])
	assert.Equal(t, "skillpath-test", entry["service"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitLoggerLevelOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "warn"
	require.NoError(t, InitLogger(cfg))
	assert.False(t, Log.Core().Enabled(zap.InfoLevel))
	assert.True(t, Log.Core().Enabled(zap.WarnLevel))

	cfg.Log.Level = "loud"
	assert.Error(t, InitLogger(cfg))
}
