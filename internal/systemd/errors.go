package systemd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	godbus "github.com/godbus/dbus/v5"
)

// Error represents an error from systemd operations.
type Error struct {
	Operation string // The operation that failed (Start, Stop, Restart, etc.)
	UnitName  string // The name of the unit
	UnitType  string // The type of the unit
	Cause     error  // The underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("systemd %s failed for %s.%s: %v", e.Operation, e.UnitName, e.UnitType, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports access-denied D-Bus replies as fs.ErrPermission so callers can
// treat supervisor and filesystem permission failures alike.
func (e *Error) Is(target error) bool {
	return target == fs.ErrPermission && isAccessDenied(e.Cause)
}

// NewError creates a new Error with the given details.
func NewError(operation, unitName, unitType string, cause error) *Error {
	return &Error{
		Operation: operation,
		UnitName:  unitName,
		UnitType:  unitType,
		Cause:     cause,
	}
}

// ConnectionError represents an error connecting to systemd.
type ConnectionError struct {
	UserMode bool  // Whether this was a user or system connection attempt
	Cause    error // The underlying error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	mode := "system"
	if e.UserMode {
		mode = "user"
	}
	return fmt.Sprintf("failed to connect to systemd %s bus: %v", mode, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports a refused bus connection as fs.ErrPermission.
func (e *ConnectionError) Is(target error) bool {
	return target == fs.ErrPermission && isAccessDenied(e.Cause)
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(userMode bool, cause error) *ConnectionError {
	return &ConnectionError{
		UserMode: userMode,
		Cause:    cause,
	}
}

// IsConnectionError checks if an error is a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsError checks if an error is a systemd Error.
func IsError(err error) bool {
	var sdErr *Error
	return errors.As(err, &sdErr)
}

// IsPermissionDenied checks whether err stems from missing privileges, either
// on the filesystem or on the systemd bus.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission) || isAccessDenied(err)
}

func isAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) {
		return true
	}

	var dbusErr godbus.Error
	if errors.As(err, &dbusErr) {
		return accessDeniedName(dbusErr.Name)
	}
	var dbusErrPtr *godbus.Error
	if errors.As(err, &dbusErrPtr) && dbusErrPtr != nil {
		return accessDeniedName(dbusErrPtr.Name)
	}
	return false
}

// accessDeniedName reports D-Bus error names meaning the caller lacks the
// privilege to manage units.
func accessDeniedName(name string) bool {
	switch name {
	case "org.freedesktop.DBus.Error.AccessDenied",
		"org.freedesktop.DBus.Error.InteractiveAuthorizationRequired",
		"org.freedesktop.PolicyKit1.Error.NotAuthorized":
		return true
	}
	return false
}
