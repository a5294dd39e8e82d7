// Package systemd provides systemd unit management operations.
package systemd

import (
	"context"
	"path/filepath"
)

// Unit types managed by portinus.
const (
	UnitTypeService = "service"
	UnitTypeTimer   = "timer"
)

// UnitPrefix is prepended to every unit name portinus owns.
const UnitPrefix = "portinus-"

// Unit defines the interface for managing one systemd unit (service or timer).
type Unit interface {
	// GetServiceName returns the full systemd unit name, e.g. portinus-foo.service
	GetServiceName() string

	// GetUnitType returns the type of the unit (service or timer)
	GetUnitType() string

	// GetUnitName returns the logical name of the unit
	GetUnitName() string

	// GetPath returns the unit file path
	GetPath() string

	// Ensure writes content as the unit file, reloads systemd and, unless
	// disabled through options, restarts and enables the unit.
	Ensure(ctx context.Context, content string, opts ...EnsureOption) error

	// Remove stops and disables the unit, deletes its file and reloads systemd.
	Remove(ctx context.Context) error

	// GetStatus returns the current active state of the unit
	GetStatus(ctx context.Context) (string, error)

	// Start starts the unit
	Start(ctx context.Context) error

	// Stop stops the unit
	Stop(ctx context.Context) error

	// Restart restarts the unit
	Restart(ctx context.Context) error

	// Enable enables the unit
	Enable(ctx context.Context) error

	// Disable disables the unit
	Disable(ctx context.Context) error

	// Reload reloads the systemd unit index
	Reload(ctx context.Context) error
}

// EnsureOptions controls what Ensure does after writing the unit file.
type EnsureOptions struct {
	Restart bool
	Enable  bool
}

// EnsureOption customises a call to Ensure.
type EnsureOption func(*EnsureOptions)

// InstallOnly writes and loads the unit without starting or enabling it.
// Used for action units that are only ever triggered by a timer.
func InstallOnly() EnsureOption {
	return func(o *EnsureOptions) {
		o.Restart = false
		o.Enable = false
	}
}

// NewEnsureOptions resolves options, defaulting to restart and enable.
func NewEnsureOptions(opts ...EnsureOption) EnsureOptions {
	o := EnsureOptions{Restart: true, Enable: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BaseUnit provides common naming for all portinus units.
type BaseUnit struct {
	Name    string
	Type    string
	UnitDir string
}

// NewBaseUnit creates a new BaseUnit with the given name, type and unit directory.
func NewBaseUnit(name, unitType, unitDir string) *BaseUnit {
	return &BaseUnit{Name: name, Type: unitType, UnitDir: unitDir}
}

// UnitName derives the systemd unit name for a logical name and type.
func UnitName(name, unitType string) string {
	return UnitPrefix + name + "." + unitType
}

// GetServiceName returns the full systemd unit name.
func (u *BaseUnit) GetServiceName() string {
	return UnitName(u.Name, u.Type)
}

// GetUnitType returns the type of the unit.
func (u *BaseUnit) GetUnitType() string {
	return u.Type
}

// GetUnitName returns the logical name of the unit.
func (u *BaseUnit) GetUnitName() string {
	return u.Name
}

// GetPath returns the unit file path.
func (u *BaseUnit) GetPath() string {
	return filepath.Join(u.UnitDir, u.GetServiceName())
}
