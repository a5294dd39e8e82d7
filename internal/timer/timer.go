// Package timer installs the systemd timers that periodically restart or
// health-check an instance.
package timer

import (
	"context"
	"errors"
	"strings"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/templates"
)

// pair is an action service plus the timer that triggers it. Both share the
// logical name <instance>-<suffix>.
type pair struct {
	action systemd.Unit
	timer  systemd.Unit
}

func newPair(units systemd.UnitManager, logicalName string) pair {
	return pair{
		action: units.GetUnit(logicalName, systemd.UnitTypeService),
		timer:  units.GetUnit(logicalName, systemd.UnitTypeTimer),
	}
}

// install writes the action unit without starting or enabling it, then the
// timer, which is started and enabled.
func (p pair) install(ctx context.Context, actionContent, timerContent string) error {
	if err := p.action.Ensure(ctx, actionContent, systemd.InstallOnly()); err != nil {
		return err
	}
	return p.timer.Ensure(ctx, timerContent)
}

// remove tears down the timer, then the action unit. Both are attempted.
func (p pair) remove(ctx context.Context) error {
	return errors.Join(p.timer.Remove(ctx), p.action.Remove(ctx))
}

// Restart forces periodic restarts of an instance service on a calendar
// schedule. It is present only when a schedule was given.
type Restart struct {
	name     string
	schedule string
	units    systemd.UnitManager
	pair     pair
	renderer *templates.Renderer
	logger   log.Logger
}

// NewRestart creates the restart timer for instance name.
func NewRestart(name, schedule string, units systemd.UnitManager, renderer *templates.Renderer, logger log.Logger) *Restart {
	logger.Debug("Initialized restart timer", "name", name, "schedule", schedule)
	return &Restart{
		name:     name,
		schedule: strings.TrimSpace(schedule),
		units:    units,
		pair:     newPair(units, name+"-restart"),
		renderer: renderer,
		logger:   logger,
	}
}

// Present reports whether a restart schedule was configured.
func (r *Restart) Present() bool {
	return r.schedule != ""
}

// Schedule returns the OnCalendar expression.
func (r *Restart) Schedule() string {
	return r.schedule
}

// TimerUnit returns the timer unit.
func (r *Restart) TimerUnit() systemd.Unit {
	return r.pair.timer
}

// Ensure installs both units when a schedule is present and removes any
// previous restart timer otherwise.
func (r *Restart) Ensure(ctx context.Context) error {
	if !r.Present() {
		r.logger.Info("No restart schedule specified, removing any existing restart timer", "name", r.name)
		return r.Remove(ctx)
	}

	r.logger.Info("Creating/updating restart timer", "name", r.name, "schedule", r.schedule)
	data := templates.RestartData{
		Name:        r.name,
		ServiceName: systemd.UnitName(r.name, systemd.UnitTypeService),
		ActionUnit:  r.pair.action.GetServiceName(),
		Systemctl:   r.units.SystemctlPath(),
		UserMode:    r.units.UserMode(),
		Schedule:    r.schedule,
	}

	action, err := r.renderer.Render(templates.RestartService, data)
	if err != nil {
		return err
	}
	timer, err := r.renderer.Render(templates.RestartTimer, data)
	if err != nil {
		return err
	}
	return r.pair.install(ctx, action, timer)
}

// Remove removes the timer and action units; absent units are not an error.
func (r *Restart) Remove(ctx context.Context) error {
	r.logger.Info("Removing restart timer", "name", r.name)
	return r.pair.remove(ctx)
}

// Monitor periodically runs the health check for an instance. It is always
// installed.
type Monitor struct {
	name     string
	settings *config.Settings
	pair     pair
	renderer *templates.Renderer
	logger   log.Logger
}

// NewMonitor creates the health-check timer for instance name.
func NewMonitor(name string, settings *config.Settings, units systemd.UnitManager, renderer *templates.Renderer, logger log.Logger) *Monitor {
	return &Monitor{
		name:     name,
		settings: settings,
		pair:     newPair(units, name+"-monitor"),
		renderer: renderer,
		logger:   logger,
	}
}

// TimerUnit returns the timer unit.
func (m *Monitor) TimerUnit() systemd.Unit {
	return m.pair.timer
}

// Command returns the action unit's ExecStart line. Paths and runtime are
// passed explicitly so the check does not depend on a config file.
func (m *Monitor) Command() string {
	args := []string{
		m.settings.BinaryPath, "monitor", m.name,
		"--service-root", m.settings.ServiceRoot,
		"--unit-dir", m.settings.UnitDir,
		"--runtime", m.settings.Runtime,
	}
	if m.settings.UserMode {
		args = append(args, "--user")
	}

	return templates.ExecLine(args...)
}

// Ensure installs the action unit and the timer.
func (m *Monitor) Ensure(ctx context.Context) error {
	m.logger.Info("Creating/updating monitor timer", "name", m.name)
	data := templates.MonitorData{
		Name:       m.name,
		Command:    m.Command(),
		ActionUnit: m.pair.action.GetServiceName(),
		Schedule:   m.settings.MonitorSchedule,
	}

	action, err := m.renderer.Render(templates.MonitorService, data)
	if err != nil {
		return err
	}
	timer, err := m.renderer.Render(templates.MonitorTimer, data)
	if err != nil {
		return err
	}
	return m.pair.install(ctx, action, timer)
}

// Remove removes the timer and action units; absent units are not an error.
func (m *Monitor) Remove(ctx context.Context) error {
	m.logger.Info("Removing monitor timer", "name", m.name)
	return m.pair.remove(ctx)
}
