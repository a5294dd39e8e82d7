package systemd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUnitFile(t *testing.T) {
	content := `[Unit]
Description=portinus - web restart timer

[Timer]
OnCalendar=*-*-* 04:00:00
Persistent=true
Unit=portinus-web-restart.service

[Service]
ExecStartPre=/bin/true
ExecStartPre=/bin/echo ready
ExecStart=/usr/local/portinus-services/web/web up

[Install]
WantedBy=timers.target
`
	path := filepath.Join(t.TempDir(), "portinus-web-restart.timer")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	unit, err := ReadUnitFile(path)
	require.NoError(t, err)

	t.Run("reads values", func(t *testing.T) {
		assert.Equal(t, "*-*-* 04:00:00", unit.Value("Timer", "OnCalendar"))
		assert.Equal(t, "portinus - web restart timer", unit.Value("Unit", "Description"))
		assert.Equal(t, "/usr/local/portinus-services/web/web up", unit.Value("Service", "ExecStart"))
	})

	t.Run("missing section or key is empty", func(t *testing.T) {
		assert.Empty(t, unit.Value("Socket", "ListenStream"))
		assert.Empty(t, unit.Value("Timer", "OnBootSec"))
		assert.Nil(t, unit.Values("Timer", "OnBootSec"))
	})

	t.Run("keeps repeated keys", func(t *testing.T) {
		assert.Equal(t, []string{"/bin/true", "/bin/echo ready"}, unit.Values("Service", "ExecStartPre"))
	})
}

func TestReadUnitFileMissing(t *testing.T) {
	_, err := ReadUnitFile(filepath.Join(t.TempDir(), "missing.service"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
