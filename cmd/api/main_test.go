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

func TestRunReturnsStartupErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "store:\n  driver: memory\nqueue:\n  enabled: true\n  redis_url: \"not a url\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	err = run(cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create queue client")
}
