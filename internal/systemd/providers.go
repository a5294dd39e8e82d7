package systemd

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/execx"
	"github.com/trly/portinus/internal/log"
)

var unitNamePattern = regexp.MustCompile(`^[A-Za-z0-9:_.@-]+$`)

// DefaultTextCaser implements TextCaser interface.
type DefaultTextCaser struct {
	caser cases.Caser
}

// NewDefaultTextCaser creates a new default text caser.
func NewDefaultTextCaser() *DefaultTextCaser {
	return &DefaultTextCaser{
		caser: cases.Title(language.English),
	}
}

// Title converts text to title case.
func (c *DefaultTextCaser) Title(text string) string {
	return c.caser.String(text)
}

// ManagerOption customises a DefaultUnitManager.
type ManagerOption func(*DefaultUnitManager)

// WithLookPath replaces the executable search used to locate systemctl.
func WithLookPath(lookPath func(string) (string, error)) ManagerOption {
	return func(m *DefaultUnitManager) {
		m.lookPath = lookPath
	}
}

// DefaultUnitManager implements UnitManager interface.
type DefaultUnitManager struct {
	connectionFactory ConnectionFactory
	settings          *config.Settings
	logger            log.Logger
	runner            execx.Runner
	lookPath          func(string) (string, error)
	systemctlPath     string
}

var _ UnitManager = (*DefaultUnitManager)(nil)

// NewDefaultUnitManager creates a unit manager bound to the host's systemd.
// It fails with a configuration error when systemctl cannot be found or run.
func NewDefaultUnitManager(ctx context.Context, connectionFactory ConnectionFactory, settings *config.Settings, logger log.Logger, runner execx.Runner, opts ...ManagerOption) (*DefaultUnitManager, error) {
	m := &DefaultUnitManager{
		connectionFactory: connectionFactory,
		settings:          settings,
		logger:            logger,
		runner:            runner,
		lookPath:          exec.LookPath,
	}
	for _, opt := range opts {
		opt(m)
	}

	path, err := m.lookPath("systemctl")
	if err != nil {
		return nil, config.NewConfigurationError("systemctl", fmt.Errorf("systemctl not found in PATH: %w", err))
	}

	output, err := runner.CombinedOutput(ctx, path, "--version")
	if err != nil {
		return nil, config.NewConfigurationError("systemctl", fmt.Errorf("systemctl --version failed: %w", err))
	}
	logger.Debug("Found systemd", "path", path, "version", firstLine(output))

	m.systemctlPath = path
	return m, nil
}

// GetUnit creates a Unit interface for the given name and type.
func (m *DefaultUnitManager) GetUnit(name, unitType string) Unit {
	return NewManagedUnit(name, unitType, m.settings.UnitDir, m.connectionFactory, m.settings.UserMode, m.logger)
}

// SystemctlPath returns the absolute path of the systemctl binary.
func (m *DefaultUnitManager) SystemctlPath() string {
	return m.systemctlPath
}

// UserMode reports whether units are managed on the user bus.
func (m *DefaultUnitManager) UserMode() bool {
	return m.settings.UserMode
}

// RecentLogs returns the last lines of the journal for a unit. systemd's
// D-Bus API has no log retrieval, so journalctl is used.
func (m *DefaultUnitManager) RecentLogs(ctx context.Context, unitName string, lines int) string {
	// Validate unitName to prevent argument injection
	if !unitNamePattern.MatchString(unitName) {
		return "(unavailable - invalid unit name)"
	}

	unitFlag := "--unit"
	if m.settings.UserMode {
		unitFlag = "--user-unit"
	}

	output, err := m.runner.CombinedOutput(ctx, "journalctl", unitFlag, unitName, "-n", strconv.Itoa(lines), "--no-pager", "--output=short-precise")
	if err != nil || len(output) == 0 {
		return "(unavailable)"
	}
	return string(output)
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			return string(b[:i])
		}
	}
	return string(b)
}
