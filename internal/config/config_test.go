package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, 1500*time.Millisecond, cfg.SaveDelay)
	assert.Equal(t, 50, cfg.HistoryDepth)
	assert.Equal(t, "default.json", cfg.BoardName)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SAVE_DELAY", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EDITOR_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://board.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDelay)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, []string{"http://localhost:5173", "https://board.example.com"}, cfg.Origins())
	assert.Equal(t, []string{"localhost:5173", "board.example.com"}, cfg.OriginPatterns())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("STORAGE_DRIVER", "redis")
	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownDriver)

	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("HISTORY_DEPTH", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("HISTORY_DEPTH", "lots")
	_, err = Load()
	assert.Error(t, err)
}
