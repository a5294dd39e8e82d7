package systemd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/testutil"
)

// recordingConnection builds a MockConnection whose jobs complete with result
// and which appends every call to calls.
func recordingConnection(calls *[]string, result string) *MockConnection {
	job := func(op string) func(context.Context, string, string) (chan string, error) {
		return func(_ context.Context, unitName, _ string) (chan string, error) {
			*calls = append(*calls, op+" "+unitName)
			ch := make(chan string, 1)
			ch <- result
			return ch, nil
		}
	}
	return &MockConnection{
		GetUnitPropertyFunc: func(_ context.Context, _, property string) (*dbus.Property, error) {
			if property == "LoadState" {
				return &dbus.Property{Name: property, Value: godbus.MakeVariant("loaded")}, nil
			}
			return &dbus.Property{Name: property, Value: godbus.MakeVariant("active")}, nil
		},
		StartUnitFunc:   job("start"),
		StopUnitFunc:    job("stop"),
		RestartUnitFunc: job("restart"),
		EnableUnitFilesFunc: func(_ context.Context, files []string) error {
			*calls = append(*calls, "enable "+files[0])
			return nil
		},
		DisableUnitFilesFunc: func(_ context.Context, files []string) error {
			*calls = append(*calls, "disable "+files[0])
			return nil
		},
		ReloadFunc: func(_ context.Context) error {
			*calls = append(*calls, "reload")
			return nil
		},
	}
}

func createTestManagedUnit(t *testing.T, factory ConnectionFactory) *ManagedUnit {
	t.Helper()
	return NewManagedUnit("web", UnitTypeService, t.TempDir(), factory, false, testutil.NewTestLogger(t))
}

func TestManagedUnitNaming(t *testing.T) {
	unit := NewManagedUnit("web-restart", UnitTypeTimer, "/etc/systemd/system", &MockConnectionFactory{}, false, testutil.NewTestLogger(t))

	assert.Equal(t, "web-restart", unit.GetUnitName())
	assert.Equal(t, UnitTypeTimer, unit.GetUnitType())
	assert.Equal(t, "portinus-web-restart.timer", unit.GetServiceName())
	assert.Equal(t, "/etc/systemd/system/portinus-web-restart.timer", unit.GetPath())
}

func TestManagedUnitEnsure(t *testing.T) {
	t.Run("writes file then reloads, restarts and enables", func(t *testing.T) {
		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})

		require.NoError(t, unit.Ensure(context.Background(), "[Unit]\nDescription=portinus - web\n"))

		content, err := os.ReadFile(unit.GetPath())
		require.NoError(t, err)
		assert.Equal(t, "[Unit]\nDescription=portinus - web\n", string(content))
		assert.Equal(t, []string{
			"reload",
			"restart portinus-web.service",
			"enable portinus-web.service",
			"reload",
		}, calls)
	})

	t.Run("install only skips restart and enable", func(t *testing.T) {
		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})

		require.NoError(t, unit.Ensure(context.Background(), "[Service]\nType=oneshot\n", InstallOnly()))

		assert.FileExists(t, unit.GetPath())
		assert.Equal(t, []string{"reload"}, calls)
	})

	t.Run("overwrites previous content", func(t *testing.T) {
		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})

		require.NoError(t, unit.Ensure(context.Background(), "old"))
		require.NoError(t, unit.Ensure(context.Background(), "new"))

		content, err := os.ReadFile(unit.GetPath())
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("failed restart job is reported", func(t *testing.T) {
		var calls []string
		conn := recordingConnection(&calls, "failed")
		conn.GetUnitPropertyFunc = func(_ context.Context, _, property string) (*dbus.Property, error) {
			if property == "LoadState" {
				return &dbus.Property{Value: godbus.MakeVariant("loaded")}, nil
			}
			return &dbus.Property{Value: godbus.MakeVariant("failed")}, nil
		}
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

		err := unit.Ensure(context.Background(), "x")
		require.Error(t, err)
		assert.True(t, IsError(err))
		assert.Contains(t, err.Error(), "Restart")
		assert.NotContains(t, calls, "enable portinus-web.service")
	})

	t.Run("activating unit counts as restarted", func(t *testing.T) {
		var calls []string
		conn := recordingConnection(&calls, "timeout")
		conn.GetUnitPropertyFunc = func(_ context.Context, _, property string) (*dbus.Property, error) {
			if property == "LoadState" {
				return &dbus.Property{Value: godbus.MakeVariant("loaded")}, nil
			}
			return &dbus.Property{Value: godbus.MakeVariant("activating")}, nil
		}
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

		require.NoError(t, unit.Ensure(context.Background(), "x"))
	})

	t.Run("connection failure surfaces", func(t *testing.T) {
		unit := createTestManagedUnit(t, &MockConnectionFactory{
			NewConnectionFunc: func(_ context.Context, _ bool) (Connection, error) {
				return nil, NewConnectionError(false, errors.New("no bus"))
			},
		})

		err := unit.Ensure(context.Background(), "x")
		require.Error(t, err)
		assert.True(t, IsConnectionError(err))
	})
}

func TestManagedUnitRemove(t *testing.T) {
	t.Run("existing unit is stopped, disabled, deleted and reloaded", func(t *testing.T) {
		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})
		require.NoError(t, os.WriteFile(unit.GetPath(), []byte("x"), 0600))

		require.NoError(t, unit.Remove(context.Background()))

		assert.NoFileExists(t, unit.GetPath())
		assert.Equal(t, []string{
			"stop portinus-web.service",
			"disable portinus-web.service",
			"reload",
			"reload",
		}, calls)
	})

	t.Run("absent unit only reloads", func(t *testing.T) {
		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})

		require.NoError(t, unit.Remove(context.Background()))
		assert.Equal(t, []string{"reload"}, calls)
	})

	t.Run("stop and disable failures are ignored", func(t *testing.T) {
		var calls []string
		conn := recordingConnection(&calls, "done")
		conn.StopUnitFunc = func(_ context.Context, _, _ string) (chan string, error) {
			return nil, errors.New("unit not running")
		}
		conn.DisableUnitFilesFunc = func(_ context.Context, _ []string) error {
			return errors.New("not enabled")
		}
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})
		require.NoError(t, os.WriteFile(unit.GetPath(), []byte("x"), 0600))

		require.NoError(t, unit.Remove(context.Background()))
		assert.NoFileExists(t, unit.GetPath())
	})

	t.Run("deletion permission failure propagates", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}

		var calls []string
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})
		require.NoError(t, os.WriteFile(unit.GetPath(), []byte("x"), 0600))
		dir := filepath.Dir(unit.GetPath())
		require.NoError(t, os.Chmod(dir, 0500))
		t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

		err := unit.Remove(context.Background())
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})
}

func TestManagedUnitGetStatus(t *testing.T) {
	t.Run("returns ActiveState", func(t *testing.T) {
		conn := &MockConnection{
			GetUnitPropertyFunc: func(_ context.Context, unitName, property string) (*dbus.Property, error) {
				assert.Equal(t, "portinus-web.service", unitName)
				assert.Equal(t, "ActiveState", property)
				return &dbus.Property{Value: godbus.MakeVariant("active")}, nil
			},
		}
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

		status, err := unit.GetStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "active", status)
	})

	t.Run("property failure is a systemd Error", func(t *testing.T) {
		conn := &MockConnection{
			GetUnitPropertyFunc: func(_ context.Context, _, _ string) (*dbus.Property, error) {
				return nil, errors.New("unit not found")
			},
		}
		unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

		status, err := unit.GetStatus(context.Background())
		assert.Empty(t, status)
		assert.True(t, IsError(err))
	})
}

func TestManagedUnitRestartRequiresLoadedUnit(t *testing.T) {
	var calls []string
	conn := recordingConnection(&calls, "done")
	conn.GetUnitPropertyFunc = func(_ context.Context, _, _ string) (*dbus.Property, error) {
		return &dbus.Property{Value: godbus.MakeVariant("not-found")}, nil
	}
	unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

	err := unit.Restart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded")
	assert.Empty(t, calls)
}

func TestManagedUnitStartStop(t *testing.T) {
	var calls []string
	unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: recordingConnection(&calls, "done")})

	require.NoError(t, unit.Start(context.Background()))
	require.NoError(t, unit.Stop(context.Background()))
	assert.Equal(t, []string{"start portinus-web.service", "stop portinus-web.service"}, calls)
}

func TestManagedUnitJobHonoursContext(t *testing.T) {
	conn := &MockConnection{
		StopUnitFunc: func(_ context.Context, _, _ string) (chan string, error) {
			return make(chan string), nil
		},
	}
	unit := createTestManagedUnit(t, &MockConnectionFactory{Connection: conn})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := unit.Stop(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
