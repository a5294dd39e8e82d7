package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trly/portinus/internal/config"
)

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	assert.NotNil(t, logger)

	logger.Debug("test debug message", "key", "value")
	logger.Info("test info message")
	logger.Warn("test warn message")
	logger.Error("test error message")
}

func TestNewSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewSettings(t)
		require.NotNil(t, cfg)
		assert.DirExists(t, cfg.ServiceRoot)
		assert.DirExists(t, cfg.UnitDir)
		assert.Equal(t, config.RuntimeDocker, cfg.Runtime)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("with options", func(t *testing.T) {
		cfg := NewSettings(t,
			WithRuntime(config.RuntimePodman),
			WithTemplateDir("/custom/templates"),
			WithMetricsDir("/custom/metrics"))

		assert.Equal(t, config.RuntimePodman, cfg.Runtime)
		assert.Equal(t, "/custom/templates", cfg.TemplateDir)
		assert.Equal(t, "/custom/metrics", cfg.MetricsDir)
	})
}

func TestWriteComposeSource(t *testing.T) {
	dir := WriteComposeSource(t, map[string]string{"conf/app.ini": "x=1"})

	assert.FileExists(t, filepath.Join(dir, "docker-compose.yml"))
	content, err := os.ReadFile(filepath.Join(dir, "conf/app.ini"))
	require.NoError(t, err)
	assert.Equal(t, "x=1", string(content))
}
