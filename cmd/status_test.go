package cmd

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/testutil"
)

const dependentCompose = `services:
  web:
    image: nginx:alpine
    depends_on:
      - db
  db:
    image: postgres:16
`

func TestStatusCommand(t *testing.T) {
	env := newTestEnv(t)
	source := testutil.WriteComposeSource(t, map[string]string{"docker-compose.yml": dependentCompose})
	_, err := env.execute(t, "ensure", "web", "--source", source)
	require.NoError(t, err)

	monitorTimer := env.units.Unit("web-monitor", systemd.UnitTypeTimer)
	require.NoError(t, os.WriteFile(monitorTimer.GetPath(), []byte("[Timer]\nOnCalendar=*:0/5\n"), 0600))
	monitorTimer.StatusFunc = func(context.Context) (string, error) { return "active", nil }

	env.units.RecentLogsFunc = func(_ context.Context, unit string, lines int) string {
		assert.Equal(t, "portinus-web.service", unit)
		assert.Equal(t, 5, lines)
		return "Started portinus - web."
	}

	out, err := env.execute(t, "status", "web", "-o", "json", "--logs", "5")
	require.NoError(t, err)

	var got InstanceStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "web", got.Name)
	assert.True(t, got.Exists)
	assert.Equal(t, env.settings.InstanceDir("web"), got.Directory)
	assert.Empty(t, got.Environment)
	assert.Equal(t, []string{"db", "web"}, got.Services)
	assert.Equal(t, "Started portinus - web.", got.Logs)
	assert.Equal(t, []UnitStatus{
		{Role: "Service", Unit: "portinus-web.service", State: "not installed"},
		{Role: "Restart Timer", Unit: "portinus-web-restart.timer", State: "not installed"},
		{Role: "Monitor Timer", Unit: "portinus-web-monitor.timer", State: "active", Schedule: "*:0/5"},
	}, got.Units)
}

func TestStatusCommandTable(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.execute(t, "ensure", "web", "--source", testutil.WriteComposeSource(t, nil))
	require.NoError(t, err)

	out, err := env.execute(t, "status", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "Instance:    web")
	assert.Contains(t, out, "Monitor Timer")
	assert.Contains(t, out, "Compose services: web")
	assert.NotContains(t, out, "Recent logs")
}

func TestStatusCommandNonexistentInstance(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "status", "ghost", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "exists: false")
	assert.NotContains(t, out, "services:")
}

func TestStatusCommandInvalidName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "status", "bad/name")
	require.Error(t, err)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
}
