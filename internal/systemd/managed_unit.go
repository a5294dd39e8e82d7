package systemd

import (
	"context"
	"fmt"

	"github.com/trly/portinus/internal/fs"
	"github.com/trly/portinus/internal/log"
)

const jobModeReplace = "replace"

// ManagedUnit wraps BaseUnit with injected dependencies for testing.
type ManagedUnit struct {
	*BaseUnit
	connectionFactory ConnectionFactory
	userMode          bool
	logger            log.Logger
}

var _ Unit = (*ManagedUnit)(nil)

// NewManagedUnit creates a new managed unit with injected dependencies.
func NewManagedUnit(name, unitType, unitDir string, connectionFactory ConnectionFactory, userMode bool, logger log.Logger) *ManagedUnit {
	return &ManagedUnit{
		BaseUnit:          NewBaseUnit(name, unitType, unitDir),
		connectionFactory: connectionFactory,
		userMode:          userMode,
		logger:            logger,
	}
}

// Ensure installs content as the unit file and brings the unit up to date.
func (u *ManagedUnit) Ensure(ctx context.Context, content string, opts ...EnsureOption) error {
	options := NewEnsureOptions(opts...)
	path := u.GetPath()

	if fs.HasChanged(path, content) {
		u.logger.Debug("Writing unit file", "path", path, "hash", fs.GetContentHash(content))
	} else {
		u.logger.Debug("Unit file unchanged, rewriting anyway", "path", path)
	}

	if err := fs.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return NewError("Ensure", u.Name, u.Type, err)
	}

	if err := u.Reload(ctx); err != nil {
		return err
	}
	if options.Restart {
		if err := u.Restart(ctx); err != nil {
			return err
		}
	}
	if options.Enable {
		if err := u.Enable(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Remove stops and disables the unit if its file is present, deletes the
// file and reloads systemd. Removing an absent unit succeeds.
func (u *ManagedUnit) Remove(ctx context.Context) error {
	path := u.GetPath()

	exists, err := fs.Exists(path)
	if err != nil {
		return NewError("Remove", u.Name, u.Type, err)
	}

	if exists {
		if err := u.Stop(ctx); err != nil {
			u.logger.Debug("Ignoring stop failure during removal", "name", u.GetServiceName(), "error", err)
		}
		if err := u.Disable(ctx); err != nil {
			u.logger.Debug("Ignoring disable failure during removal", "name", u.GetServiceName(), "error", err)
		}
	}

	removed, err := fs.RemoveIfExists(path)
	if err != nil {
		return NewError("Remove", u.Name, u.Type, err)
	}
	if removed {
		u.logger.Debug("Removed unit file", "path", path)
	}

	return u.Reload(ctx)
}

// GetStatus returns the current status of the unit.
func (u *ManagedUnit) GetStatus(ctx context.Context) (string, error) {
	conn, err := u.connectionFactory.NewConnection(ctx, u.userMode)
	if err != nil {
		return "", err // Connection factory already wraps with proper error type
	}
	defer func() { _ = conn.Close() }()

	prop, err := conn.GetUnitProperty(ctx, u.GetServiceName(), "ActiveState")
	if err != nil {
		return "", NewError("GetStatus", u.Name, u.Type, err)
	}
	return propertyString(prop.Value.Value()), nil
}

// Start starts the unit.
func (u *ManagedUnit) Start(ctx context.Context) error {
	return u.runJob(ctx, "Start", func(conn Connection, serviceName string) (chan string, error) {
		return conn.StartUnit(ctx, serviceName, jobModeReplace)
	})
}

// Stop stops the unit.
func (u *ManagedUnit) Stop(ctx context.Context) error {
	return u.runJob(ctx, "Stop", func(conn Connection, serviceName string) (chan string, error) {
		return conn.StopUnit(ctx, serviceName, jobModeReplace)
	})
}

// Restart restarts the unit, starting it if it is not running.
func (u *ManagedUnit) Restart(ctx context.Context) error {
	return u.runJob(ctx, "Restart", func(conn Connection, serviceName string) (chan string, error) {
		// Check if unit is loaded before attempting restart
		loadState, err := conn.GetUnitProperty(ctx, serviceName, "LoadState")
		if err != nil {
			return nil, fmt.Errorf("error checking unit load state %s: %w", serviceName, err)
		}
		if state := propertyString(loadState.Value.Value()); state != "loaded" {
			return nil, fmt.Errorf("unit %s is not loaded (LoadState: %s), cannot restart", serviceName, state)
		}
		return conn.RestartUnit(ctx, serviceName, jobModeReplace)
	})
}

// Enable enables the unit so it starts with its install target.
func (u *ManagedUnit) Enable(ctx context.Context) error {
	conn, err := u.connectionFactory.NewConnection(ctx, u.userMode)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	serviceName := u.GetServiceName()
	u.logger.Debug("Enabling unit", "name", serviceName)

	if err := conn.EnableUnitFiles(ctx, []string{serviceName}); err != nil {
		return NewError("Enable", u.Name, u.Type, err)
	}
	if err := conn.Reload(ctx); err != nil {
		return NewError("Enable", u.Name, u.Type, err)
	}
	return nil
}

// Disable removes the unit from its install target.
func (u *ManagedUnit) Disable(ctx context.Context) error {
	conn, err := u.connectionFactory.NewConnection(ctx, u.userMode)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	serviceName := u.GetServiceName()
	u.logger.Debug("Disabling unit", "name", serviceName)

	if err := conn.DisableUnitFiles(ctx, []string{serviceName}); err != nil {
		return NewError("Disable", u.Name, u.Type, err)
	}
	if err := conn.Reload(ctx); err != nil {
		return NewError("Disable", u.Name, u.Type, err)
	}
	return nil
}

// Reload makes systemd re-read all unit files.
func (u *ManagedUnit) Reload(ctx context.Context) error {
	conn, err := u.connectionFactory.NewConnection(ctx, u.userMode)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	u.logger.Debug("Reloading systemd")
	if err := conn.Reload(ctx); err != nil {
		return NewError("Reload", u.Name, u.Type, err)
	}
	return nil
}

// runJob opens a connection, submits a job through submit and waits for it.
func (u *ManagedUnit) runJob(ctx context.Context, operation string, submit func(Connection, string) (chan string, error)) error {
	conn, err := u.connectionFactory.NewConnection(ctx, u.userMode)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	serviceName := u.GetServiceName()
	u.logger.Debug("Submitting unit job", "operation", operation, "name", serviceName)

	ch, err := submit(conn, serviceName)
	if err != nil {
		return NewError(operation, u.Name, u.Type, err)
	}

	var result string
	select {
	case result = <-ch:
	case <-ctx.Done():
		return NewError(operation, u.Name, u.Type, ctx.Err())
	}

	if result != "done" {
		// A unit still coming up has accepted the job.
		activeState, err := conn.GetUnitProperty(ctx, serviceName, "ActiveState")
		if err == nil && propertyString(activeState.Value.Value()) == "activating" {
			u.logger.Debug("Unit is activating", "name", serviceName, "result", result)
			return nil
		}
		return NewError(operation, u.Name, u.Type, fmt.Errorf("job finished with result %q", result))
	}

	u.logger.Debug("Unit job finished", "operation", operation, "name", serviceName)
	return nil
}

func propertyString(v interface{}) string {
	s, _ := v.(string)
	return s
}
