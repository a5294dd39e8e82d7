package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/testutil"
	"github.com/trly/portinus/internal/testutil/fakerunner"
)

func fakeLookPath(path string, err error) ManagerOption {
	return WithLookPath(func(string) (string, error) { return path, err })
}

func TestDefaultTextCaser(t *testing.T) {
	caser := NewDefaultTextCaser()
	assert.Equal(t, "Active", caser.Title("active"))
	assert.Equal(t, "Restart Timer", caser.Title("restart timer"))
}

func TestNewDefaultUnitManager(t *testing.T) {
	t.Run("locates systemctl", func(t *testing.T) {
		runner := fakerunner.New()
		runner.SetOutput("/usr/bin/systemctl", []string{"--version"}, []byte("systemd 255 (255.4-1)\n+PAM +AUDIT\n"))

		m, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, testutil.NewSettings(t), testutil.NewTestLogger(t), runner,
			fakeLookPath("/usr/bin/systemctl", nil))
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/systemctl", m.SystemctlPath())
		assert.False(t, m.UserMode())
	})

	t.Run("missing systemctl is a configuration error", func(t *testing.T) {
		_, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, testutil.NewSettings(t), testutil.NewTestLogger(t), fakerunner.New(),
			fakeLookPath("", errors.New("executable file not found in $PATH")))
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
	})

	t.Run("broken systemctl is a configuration error", func(t *testing.T) {
		runner := fakerunner.New()
		runner.SetExitCode("/bin/systemctl", []string{"--version"}, 1)

		_, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, testutil.NewSettings(t), testutil.NewTestLogger(t), runner,
			fakeLookPath("/bin/systemctl", nil))
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
	})
}

func TestDefaultUnitManagerGetUnit(t *testing.T) {
	settings := testutil.NewSettings(t)
	settings.UserMode = true

	m, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, settings, testutil.NewTestLogger(t), fakerunner.New(),
		fakeLookPath("/usr/bin/systemctl", nil))
	require.NoError(t, err)

	unit := m.GetUnit("web-monitor", UnitTypeTimer)
	assert.Equal(t, "portinus-web-monitor.timer", unit.GetServiceName())
	assert.Equal(t, settings.UnitDir+"/portinus-web-monitor.timer", unit.GetPath())
	assert.True(t, m.UserMode())
}

func TestDefaultUnitManagerRecentLogs(t *testing.T) {
	t.Run("system unit", func(t *testing.T) {
		runner := fakerunner.New()
		runner.SetOutput("journalctl", []string{"--unit", "portinus-web.service", "-n", "5", "--no-pager", "--output=short-precise"}, []byte("line1\nline2\n"))

		m, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, testutil.NewSettings(t), testutil.NewTestLogger(t), runner,
			fakeLookPath("/usr/bin/systemctl", nil))
		require.NoError(t, err)

		assert.Equal(t, "line1\nline2\n", m.RecentLogs(context.Background(), "portinus-web.service", 5))
	})

	t.Run("user unit", func(t *testing.T) {
		settings := testutil.NewSettings(t)
		settings.UserMode = true
		runner := fakerunner.New()

		m, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, settings, testutil.NewTestLogger(t), runner,
			fakeLookPath("/usr/bin/systemctl", nil))
		require.NoError(t, err)

		assert.Equal(t, "(unavailable)", m.RecentLogs(context.Background(), "portinus-web.service", 3))
		calls := runner.GetCalls()
		assert.Equal(t, "--user-unit", calls[len(calls)-1].Args[0])
	})

	t.Run("rejects unsafe names", func(t *testing.T) {
		runner := fakerunner.New()
		m, err := NewDefaultUnitManager(context.Background(), &MockConnectionFactory{}, testutil.NewSettings(t), testutil.NewTestLogger(t), runner,
			fakeLookPath("/usr/bin/systemctl", nil))
		require.NoError(t, err)

		assert.Contains(t, m.RecentLogs(context.Background(), "web; rm -rf /", 3), "invalid unit name")
		assert.Len(t, runner.GetCalls(), 1)
	})
}
