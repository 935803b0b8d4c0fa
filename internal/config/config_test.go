package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GIN_MODE", "ENV", "ENABLE_DB", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"MODEL_DIR", "MODEL_ROUTED_DISEASES", "SUGGESTIONS_FILE", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.EnableDB)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "medtriage.db", cfg.SQLitePath)
	assert.Equal(t, "models", cfg.ModelDir)
	assert.Empty(t, cfg.ModelRoutedDiseases)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Production())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_DB", "true")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadSQLiteNeedsNoURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_DB", "TRUE")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/h.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.EnableDB)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/h.db", cfg.SQLitePath)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := map[string][2]string{
		"driver":     {"DB_DRIVER", "mysql"},
		"log format": {"LOG_FORMAT", "xml"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), kv[1])
		})
	}
}

func TestLoadSplitsRoutedDiseases(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_ROUTED_DISEASES", " kidney, ,heart,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kidney", "heart"}, cfg.ModelRoutedDiseases)
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	t.Run("production json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Env: "production", LogFormat: "json"}, &buf)
		logger.Info("hello", "k", 1)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hello", line["msg"])
		assert.NotContains(t, line, "source")
	})

	t.Run("development text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Env: "development", LogFormat: "text"}, &buf)
		logger.Info("hello")

		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "source=")
	})
}
