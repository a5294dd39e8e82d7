// Package systemd provides systemd unit management operations.
package systemd

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Connection wraps systemd D-Bus operations for testability.
type Connection interface {
	// GetUnitProperty gets a property of a systemd unit.
	GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)

	// StartUnit starts a systemd unit.
	StartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// StopUnit stops a systemd unit.
	StopUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// RestartUnit restarts a systemd unit.
	RestartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// EnableUnitFiles links the named unit files into their install targets.
	EnableUnitFiles(ctx context.Context, files []string) error

	// DisableUnitFiles removes the install links of the named unit files.
	DisableUnitFiles(ctx context.Context, files []string) error

	// Reload reloads systemd configuration.
	Reload(ctx context.Context) error

	// Close closes the connection.
	Close() error
}

// ConnectionFactory creates Connection instances.
type ConnectionFactory interface {
	// NewConnection creates a new systemd connection based on configuration.
	NewConnection(ctx context.Context, userMode bool) (Connection, error)
}

// UnitManager hands out Unit handles bound to the host supervisor.
type UnitManager interface {
	// GetUnit creates a Unit for the given logical name and unit type.
	GetUnit(name, unitType string) Unit

	// SystemctlPath returns the absolute path of the systemctl binary.
	SystemctlPath() string

	// UserMode reports whether units are managed on the user bus.
	UserMode() bool

	// RecentLogs returns the last journal lines of a unit.
	RecentLogs(ctx context.Context, unitName string, lines int) string
}

// TextCaser provides text casing operations.
type TextCaser interface {
	// Title converts text to title case.
	Title(text string) string
}
