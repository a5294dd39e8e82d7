package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/testutil"
)

func TestValidateCommand(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		env := newTestEnv(t)
		source := testutil.WriteComposeSource(t, map[string]string{"docker-compose.yml": dependentCompose})

		out, err := env.execute(t, "validate", source)
		require.NoError(t, err)
		assert.Contains(t, out, "docker-compose.yml is valid")
		assert.Contains(t, out, "Services: db, web")
		assert.Empty(t, env.units.Calls())
	})

	t.Run("interpolates from environment file", func(t *testing.T) {
		env := newTestEnv(t)
		source := testutil.WriteComposeSource(t, map[string]string{
			"docker-compose.yml": "services:\n  app:\n    image: nginx:${TAG:?TAG is required}\n",
		})
		envFile := filepath.Join(t.TempDir(), "app.env")
		require.NoError(t, os.WriteFile(envFile, []byte("TAG=1.27\n"), 0600))

		_, err := env.execute(t, "validate", source)
		require.Error(t, err)
		assert.Equal(t, ExitConfiguration, ExitCode(err))

		out, err := env.execute(t, "validate", source, "--env", envFile)
		require.NoError(t, err)
		assert.Contains(t, out, "Services: app")
	})

	t.Run("missing directory", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Equal(t, ExitConfiguration, ExitCode(err))
	})

	t.Run("dependency cycle", func(t *testing.T) {
		env := newTestEnv(t)
		source := testutil.WriteComposeSource(t, map[string]string{
			"docker-compose.yml": "services:\n  a:\n    image: busybox\n    depends_on: [b]\n  b:\n    image: busybox\n    depends_on: [a]\n",
		})
		_, err := env.execute(t, "validate", source)
		require.Error(t, err)
		assert.Equal(t, ExitConfiguration, ExitCode(err))
	})
}
