package systemd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Error returns formatted message", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := NewError("Restart", "web", "service", originalErr)

		expected := "systemd Restart failed for web.service: connection refused"
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := NewError("Restart", "web", "service", originalErr)

		assert.Equal(t, originalErr, errors.Unwrap(err))
	})

	t.Run("IsError detects wrapped Error", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := fmt.Errorf("ensure: %w", NewError("Restart", "web", "service", originalErr))

		assert.True(t, IsError(err))
		assert.False(t, IsError(originalErr))
	})
}

func TestConnectionError(t *testing.T) {
	t.Run("Error returns formatted message for user mode", func(t *testing.T) {
		err := NewConnectionError(true, errors.New("permission denied"))
		assert.Equal(t, "failed to connect to systemd user bus: permission denied", err.Error())
	})

	t.Run("Error returns formatted message for system mode", func(t *testing.T) {
		err := NewConnectionError(false, errors.New("permission denied"))
		assert.Equal(t, "failed to connect to systemd system bus: permission denied", err.Error())
	})

	t.Run("IsConnectionError detects ConnectionError", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := NewConnectionError(true, originalErr)

		assert.True(t, IsConnectionError(err))
		assert.False(t, IsConnectionError(originalErr))
		assert.Equal(t, originalErr, errors.Unwrap(err))
	})
}

func TestPermissionDenied(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "filesystem permission",
			err:      NewError("Ensure", "web", "service", &fs.PathError{Op: "open", Path: "/etc/systemd/system/x", Err: fs.ErrPermission}),
			expected: true,
		},
		{
			name:     "dbus access denied value",
			err:      NewError("Restart", "web", "service", fmt.Errorf("error restarting unit: %w", godbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"})),
			expected: true,
		},
		{
			name:     "polkit refusal pointer",
			err:      NewError("Enable", "web", "service", &godbus.Error{Name: "org.freedesktop.PolicyKit1.Error.NotAuthorized"}),
			expected: true,
		},
		{
			name:     "other dbus error",
			err:      NewError("Restart", "web", "service", godbus.Error{Name: "org.freedesktop.systemd1.NoSuchUnit"}),
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPermissionDenied(tt.err))
			assert.Equal(t, tt.expected, errors.Is(tt.err, fs.ErrPermission))
		})
	}
}
