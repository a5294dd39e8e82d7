package systemd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"
)

// MockConnection implements Connection interface for testing.
type MockConnection struct {
	GetUnitPropertyFunc  func(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)
	StartUnitFunc        func(ctx context.Context, unitName, mode string) (chan string, error)
	StopUnitFunc         func(ctx context.Context, unitName, mode string) (chan string, error)
	RestartUnitFunc      func(ctx context.Context, unitName, mode string) (chan string, error)
	EnableUnitFilesFunc  func(ctx context.Context, files []string) error
	DisableUnitFilesFunc func(ctx context.Context, files []string) error
	ReloadFunc           func(ctx context.Context) error
	CloseFunc            func() error
}

// GetUnitProperty gets a property of a systemd unit.
func (m *MockConnection) GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error) {
	if m.GetUnitPropertyFunc != nil {
		return m.GetUnitPropertyFunc(ctx, unitName, propertyName)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// StartUnit starts a systemd unit.
func (m *MockConnection) StartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.StartUnitFunc != nil {
		return m.StartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// StopUnit stops a systemd unit.
func (m *MockConnection) StopUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.StopUnitFunc != nil {
		return m.StopUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// RestartUnit restarts a systemd unit.
func (m *MockConnection) RestartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.RestartUnitFunc != nil {
		return m.RestartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// EnableUnitFiles enables unit files.
func (m *MockConnection) EnableUnitFiles(ctx context.Context, files []string) error {
	if m.EnableUnitFilesFunc != nil {
		return m.EnableUnitFilesFunc(ctx, files)
	}
	return fmt.Errorf("mock not implemented")
}

// DisableUnitFiles disables unit files.
func (m *MockConnection) DisableUnitFiles(ctx context.Context, files []string) error {
	if m.DisableUnitFilesFunc != nil {
		return m.DisableUnitFilesFunc(ctx, files)
	}
	return fmt.Errorf("mock not implemented")
}

// Reload reloads systemd configuration.
func (m *MockConnection) Reload(ctx context.Context) error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return fmt.Errorf("mock not implemented")
}

// Close closes the connection.
func (m *MockConnection) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockConnectionFactory implements ConnectionFactory interface for testing.
type MockConnectionFactory struct {
	NewConnectionFunc func(ctx context.Context, userMode bool) (Connection, error)
	Connection        Connection
}

// NewConnection creates a new systemd connection based on configuration.
func (m *MockConnectionFactory) NewConnection(ctx context.Context, userMode bool) (Connection, error) {
	if m.NewConnectionFunc != nil {
		return m.NewConnectionFunc(ctx, userMode)
	}
	if m.Connection != nil {
		return m.Connection, nil
	}
	return nil, fmt.Errorf("mock not configured")
}

// MockTextCaser implements TextCaser interface for testing.
type MockTextCaser struct {
	TitleFunc func(text string) string
}

// Title converts text to title case.
func (m *MockTextCaser) Title(text string) string {
	if m.TitleFunc != nil {
		return m.TitleFunc(text)
	}
	// Default simple title case implementation for testing
	if len(text) == 0 {
		return text
	}
	return string(text[0]-32) + text[1:] // Simple uppercase first character
}

// MockUnit implements Unit for testing. Every call is appended to the owning
// MockUnitManager's journal as "<unit>:<Operation>".
type MockUnit struct {
	*BaseUnit
	manager *MockUnitManager

	EnsureFunc  func(ctx context.Context, content string, opts EnsureOptions) error
	RemoveFunc  func(ctx context.Context) error
	StatusFunc  func(ctx context.Context) (string, error)
	StartFunc   func(ctx context.Context) error
	StopFunc    func(ctx context.Context) error
	RestartFunc func(ctx context.Context) error
	EnableFunc  func(ctx context.Context) error
	DisableFunc func(ctx context.Context) error
	ReloadFunc  func(ctx context.Context) error

	// Content and Options hold the arguments of the latest Ensure call.
	Content string
	Options EnsureOptions
}

var _ Unit = (*MockUnit)(nil)

func (m *MockUnit) record(op string) {
	if m.manager != nil {
		m.manager.record(m.GetServiceName() + ":" + op)
	}
}

// Ensure records the unit content and options.
func (m *MockUnit) Ensure(ctx context.Context, content string, opts ...EnsureOption) error {
	m.record("Ensure")
	m.Content = content
	m.Options = NewEnsureOptions(opts...)
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx, content, m.Options)
	}
	return nil
}

// Remove records a removal.
func (m *MockUnit) Remove(ctx context.Context) error {
	m.record("Remove")
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx)
	}
	return nil
}

// GetStatus returns the configured status or "inactive".
func (m *MockUnit) GetStatus(ctx context.Context) (string, error) {
	m.record("GetStatus")
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return "inactive", nil
}

// Start records a start.
func (m *MockUnit) Start(ctx context.Context) error {
	m.record("Start")
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return nil
}

// Stop records a stop.
func (m *MockUnit) Stop(ctx context.Context) error {
	m.record("Stop")
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return nil
}

// Restart records a restart.
func (m *MockUnit) Restart(ctx context.Context) error {
	m.record("Restart")
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx)
	}
	return nil
}

// Enable records an enable.
func (m *MockUnit) Enable(ctx context.Context) error {
	m.record("Enable")
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx)
	}
	return nil
}

// Disable records a disable.
func (m *MockUnit) Disable(ctx context.Context) error {
	m.record("Disable")
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx)
	}
	return nil
}

// Reload records a reload.
func (m *MockUnit) Reload(ctx context.Context) error {
	m.record("Reload")
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return nil
}

// MockUnitManager implements UnitManager interface for testing. Units are
// created on first use and handed out again on later calls with the same name.
type MockUnitManager struct {
	GetUnitFunc    func(name, unitType string) Unit
	RecentLogsFunc func(ctx context.Context, unitName string, lines int) string
	UnitDir        string
	Systemctl      string
	User           bool

	mu    sync.Mutex
	units map[string]*MockUnit
	calls []string
}

var _ UnitManager = (*MockUnitManager)(nil)

// GetUnit creates a Unit interface for the given name and type.
func (m *MockUnitManager) GetUnit(name, unitType string) Unit {
	if m.GetUnitFunc != nil {
		return m.GetUnitFunc(name, unitType)
	}
	return m.Unit(name, unitType)
}

// Unit returns the MockUnit for name and type, creating it when needed.
func (m *MockUnitManager) Unit(name, unitType string) *MockUnit {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.units == nil {
		m.units = make(map[string]*MockUnit)
	}
	key := UnitName(name, unitType)
	if u, ok := m.units[key]; ok {
		return u
	}

	dir := m.UnitDir
	if dir == "" {
		dir = filepath.Join("/etc", "systemd", "system")
	}
	u := &MockUnit{BaseUnit: NewBaseUnit(name, unitType, dir), manager: m}
	m.units[key] = u
	return u
}

// SystemctlPath returns the configured systemctl path.
func (m *MockUnitManager) SystemctlPath() string {
	if m.Systemctl == "" {
		return "/usr/bin/systemctl"
	}
	return m.Systemctl
}

// UserMode returns the configured user mode.
func (m *MockUnitManager) UserMode() bool {
	return m.User
}

// RecentLogs returns configured log lines.
func (m *MockUnitManager) RecentLogs(ctx context.Context, unitName string, lines int) string {
	if m.RecentLogsFunc != nil {
		return m.RecentLogsFunc(ctx, unitName, lines)
	}
	return ""
}

// Calls returns the journal of unit operations in call order.
func (m *MockUnitManager) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockUnitManager) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}
