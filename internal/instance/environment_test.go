package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/testutil"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewEnvironmentFile(t *testing.T) {
	settings := testutil.NewSettings(t)
	logger := testutil.NewTestLogger(t)

	t.Run("absent", func(t *testing.T) {
		env, err := NewEnvironmentFile("web", "", settings, logger)
		require.NoError(t, err)
		assert.False(t, env.Present())
		assert.Equal(t, filepath.Join(settings.ServiceRoot, "web.environment"), env.Path())
	})

	t.Run("present", func(t *testing.T) {
		env, err := NewEnvironmentFile("web", writeEnvFile(t, "A=1\n"), settings, logger)
		require.NoError(t, err)
		assert.True(t, env.Present())
	})

	t.Run("missing source is a configuration error", func(t *testing.T) {
		_, err := NewEnvironmentFile("web", filepath.Join(t.TempDir(), "missing.env"), settings, logger)
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory is a configuration error", func(t *testing.T) {
		_, err := NewEnvironmentFile("web", t.TempDir(), settings, logger)
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
	})
}

func TestEnvironmentFileEnsure(t *testing.T) {
	settings := testutil.NewSettings(t)
	logger := testutil.NewTestLogger(t)
	source := writeEnvFile(t, "A=1\n")

	env, err := NewEnvironmentFile("web", source, settings, logger)
	require.NoError(t, err)
	require.NoError(t, env.Ensure())

	content, err := os.ReadFile(env.Path())
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(content))

	// Overwrites on the next ensure.
	require.NoError(t, os.WriteFile(source, []byte("A=2\n"), 0600))
	require.NoError(t, env.Ensure())
	content, err = os.ReadFile(env.Path())
	require.NoError(t, err)
	assert.Equal(t, "A=2\n", string(content))

	// Dropping the source removes the managed copy.
	absent, err := NewEnvironmentFile("web", "", settings, logger)
	require.NoError(t, err)
	require.NoError(t, absent.Ensure())
	assert.NoFileExists(t, env.Path())

	// And is a no-op when nothing is there.
	assert.NoError(t, absent.Ensure())
}

func TestEnvironmentFileRemove(t *testing.T) {
	settings := testutil.NewSettings(t)
	logger := testutil.NewTestLogger(t)

	env, err := NewEnvironmentFile("web", writeEnvFile(t, "A=1\n"), settings, logger)
	require.NoError(t, err)

	assert.NoError(t, env.Remove(), "missing copy is not an error")

	require.NoError(t, env.Ensure())
	require.NoError(t, env.Remove())
	assert.NoFileExists(t, env.Path())
}
