package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/config"
	"github.com/projecta/notifier/pkg/logger"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestRunReturnsStartupErrors(t *testing.T) {
	t.Run("bad queue url", func(t *testing.T) {
		cfg := loadConfig(t, "store:\n  driver: memory\nqueue:\n  enabled: true\n  redis_url: \"not a url\"\n")
		err := run(cfg, logger.Nop(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid queue configuration")
	})

	t.Run("missing seed file", func(t *testing.T) {
		cfg := loadConfig(t, "store:\n  driver: memory\n")
		err := run(cfg, logger.Nop(), filepath.Join(t.TempDir(), "projects.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read seed file")
	})
}
