package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/testutil"
)

func TestComposeCommand(t *testing.T) {
	t.Run("nonexistent instance", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.execute(t, "compose", "web", "ps")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidState, ExitCode(err))
		assert.Empty(t, env.runner.GetCalls())
	})

	t.Run("nonexistent instance never reaches systemd", func(t *testing.T) {
		env := newTestEnv(t)
		env.app.NewUnitManager = func(context.Context) (systemd.UnitManager, error) {
			return nil, errors.New("unit manager must not be built")
		}

		_, err := env.execute(t, "compose", "web", "ps")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidState, ExitCode(err))
		assert.Empty(t, env.runner.GetCalls())
	})

	t.Run("invalid name", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.execute(t, "compose", "web-monitor", "ps")
		require.Error(t, err)
		assert.Equal(t, ExitConfiguration, ExitCode(err))
	})

	t.Run("flags pass through to compose", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.execute(t, "ensure", "web", "--source", testutil.WriteComposeSource(t, nil))
		require.NoError(t, err)

		_, err = env.execute(t, "compose", "web", "logs", "-f", "--tail", "50")
		require.NoError(t, err)

		calls := env.runner.GetCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, env.settings.WrapperPath("web"), calls[0].Name)
		assert.Equal(t, []string{"logs", "-f", "--tail", "50"}, calls[0].Args)
	})

	t.Run("exit status propagates", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.execute(t, "ensure", "web", "--source", testutil.WriteComposeSource(t, nil))
		require.NoError(t, err)
		env.runner.SetExitCode(env.settings.WrapperPath("web"), []string{"exec", "web", "false"}, 7)

		_, err = env.execute(t, "compose", "web", "exec", "web", "false")
		require.Error(t, err)
		assert.Equal(t, 7, ExitCode(err))
		assert.True(t, IsReported(err))
	})

	t.Run("requires a name", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.execute(t, "compose")
		assert.Error(t, err)
	})
}
