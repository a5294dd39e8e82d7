package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/monitor"
	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/testutil"
	"github.com/trly/portinus/internal/testutil/fakerunner"
)

// testEnv is an App wired to in-memory doubles.
type testEnv struct {
	app       *App
	settings  *config.Settings
	units     *systemd.MockUnitManager
	runner    *fakerunner.Runner
	inspector *monitor.MockInspector
}

func newTestEnv(t *testing.T, opts ...testutil.SettingsOption) *testEnv {
	t.Helper()
	settings := testutil.NewSettings(t, opts...)
	env := &testEnv{
		settings:  settings,
		units:     &systemd.MockUnitManager{UnitDir: settings.UnitDir},
		runner:    fakerunner.New(),
		inspector: &monitor.MockInspector{},
	}
	env.app = &App{
		Logger:         testutil.NewTestLogger(t),
		Config:         settings,
		ConfigProvider: config.NewDefaultConfigProvider(),
		Runner:         env.runner,
		NewUnitManager: func(context.Context) (systemd.UnitManager, error) {
			return env.units, nil
		},
		NewInspector: func(context.Context) (monitor.ContainerInspector, func(), error) {
			return env.inspector, func() {}, nil
		},
		TextCaser: systemd.NewDefaultTextCaser(),
	}
	return env
}

// execute runs the full command tree with the test App in its context.
func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand().GetCobraCommand()
	SetupCommandContext(root, e.app)
	return ExecuteCommandWithCapture(t, root, args)
}

// ExecuteCommandWithCapture executes a cobra command and returns what it wrote
// to its output and error streams.
func ExecuteCommandWithCapture(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// SetupCommandContext creates a command with app context for testing.
func SetupCommandContext(cmd *cobra.Command, app *App) {
	ctx := context.WithValue(context.Background(), appContextKey, app)
	cmd.SetContext(ctx)
}
