package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/trly/portinus/internal/log"
)

// DBusConnection implements Connection interface wrapping systemd D-Bus operations.
type DBusConnection struct {
	conn *dbus.Conn
}

// NewDBusConnection creates a new D-Bus connection wrapper.
func NewDBusConnection(conn *dbus.Conn) *DBusConnection {
	return &DBusConnection{conn: conn}
}

// GetUnitProperty gets a property of a systemd unit.
func (d *DBusConnection) GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error) {
	prop, err := d.conn.GetUnitPropertyContext(ctx, unitName, propertyName)
	if err != nil {
		return nil, fmt.Errorf("error getting unit property %s for %s: %w", propertyName, unitName, err)
	}
	return prop, nil
}

// StartUnit queues a start job. The returned channel receives the job result.
func (d *DBusConnection) StartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	return d.queueJob("starting", unitName, func(ch chan<- string) (int, error) {
		return d.conn.StartUnitContext(ctx, unitName, mode, ch)
	})
}

// StopUnit queues a stop job.
func (d *DBusConnection) StopUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	return d.queueJob("stopping", unitName, func(ch chan<- string) (int, error) {
		return d.conn.StopUnitContext(ctx, unitName, mode, ch)
	})
}

// RestartUnit queues a restart job.
func (d *DBusConnection) RestartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	return d.queueJob("restarting", unitName, func(ch chan<- string) (int, error) {
		return d.conn.RestartUnitContext(ctx, unitName, mode, ch)
	})
}

func (d *DBusConnection) queueJob(verb, unitName string, queue func(chan<- string) (int, error)) (chan string, error) {
	ch := make(chan string, 1)
	if _, err := queue(ch); err != nil {
		return nil, fmt.Errorf("error %s unit %s: %w", verb, unitName, err)
	}
	return ch, nil
}

// EnableUnitFiles enables unit files persistently, replacing stale links.
func (d *DBusConnection) EnableUnitFiles(ctx context.Context, files []string) error {
	_, _, err := d.conn.EnableUnitFilesContext(ctx, files, false, true)
	if err != nil {
		return fmt.Errorf("error enabling unit files %v: %w", files, err)
	}
	return nil
}

// DisableUnitFiles disables unit files persistently.
func (d *DBusConnection) DisableUnitFiles(ctx context.Context, files []string) error {
	_, err := d.conn.DisableUnitFilesContext(ctx, files, false)
	if err != nil {
		return fmt.Errorf("error disabling unit files %v: %w", files, err)
	}
	return nil
}

// Reload reloads systemd configuration.
func (d *DBusConnection) Reload(ctx context.Context) error {
	err := d.conn.ReloadContext(ctx)
	if err != nil {
		return fmt.Errorf("error reloading systemd: %w", err)
	}
	return nil
}

// Close closes the D-Bus connection.
func (d *DBusConnection) Close() error {
	d.conn.Close()
	return nil
}

// DefaultConnectionFactory implements ConnectionFactory interface.
type DefaultConnectionFactory struct {
	logger log.Logger
}

// NewConnectionFactory creates a new connection factory with injected logger.
func NewConnectionFactory(logger log.Logger) *DefaultConnectionFactory {
	return &DefaultConnectionFactory{
		logger: logger,
	}
}

// NewConnection creates a new systemd connection based on configuration.
func (f *DefaultConnectionFactory) NewConnection(ctx context.Context, userMode bool) (Connection, error) {
	var conn *dbus.Conn
	var err error

	if userMode {
		f.logger.Debug("Establishing user connection to systemd")
		conn, err = dbus.NewUserConnectionContext(ctx)
	} else {
		f.logger.Debug("Establishing system connection to systemd")
		conn, err = dbus.NewSystemConnectionContext(ctx)
	}

	if err != nil {
		return nil, NewConnectionError(userMode, err)
	}

	return NewDBusConnection(conn), nil
}
