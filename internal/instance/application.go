package instance

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/trly/portinus/internal/compose"
	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/dependency"
	"github.com/trly/portinus/internal/execx"
	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/templates"
	"github.com/trly/portinus/internal/timer"
)

// Lifecycle steps of an instance.
const (
	StepEnvironment  = "environment"
	StepService      = "service"
	StepRestartTimer = "restart-timer"
	StepMonitorTimer = "monitor-timer"
)

// Options are the operator inputs for an instance. All fields are optional;
// only Ensure requires Source.
type Options struct {
	Source          string
	EnvironmentFile string
	RestartSchedule string
}

// Application ties together everything that makes up one instance.
type Application struct {
	name        string
	settings    *config.Settings
	environment *EnvironmentFile
	service     *Service
	restart     *timer.Restart
	monitor     *timer.Monitor
	steps       *dependency.Graph
	logger      log.Logger
}

// NewApplication validates the name and options and builds the instance's
// components. No filesystem or unit state is touched.
func NewApplication(name string, opts Options, settings *config.Settings, units systemd.UnitManager, runner execx.Runner, logger log.Logger) (*Application, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	source, err := compose.NewSource(opts.Source)
	if err != nil {
		return nil, err
	}
	environment, err := NewEnvironmentFile(name, opts.EnvironmentFile, settings, logger)
	if err != nil {
		return nil, err
	}

	steps, err := lifecycleGraph()
	if err != nil {
		return nil, err
	}

	renderer := templates.NewRenderer(settings.TemplateDir, logger)
	return &Application{
		name:        name,
		settings:    settings,
		environment: environment,
		service:     NewService(name, source, settings, units, renderer, runner, logger),
		restart:     timer.NewRestart(name, opts.RestartSchedule, units, renderer, logger),
		monitor:     timer.NewMonitor(name, settings, units, renderer, logger),
		steps:       steps,
		logger:      logger,
	}, nil
}

// The environment file must exist before the unit referencing it is written,
// and the service before the timers that name its unit.
func lifecycleGraph() (*dependency.Graph, error) {
	g := dependency.New()
	for _, step := range []string{StepEnvironment, StepService, StepRestartTimer, StepMonitorTimer} {
		if err := g.AddNode(step); err != nil {
			return nil, err
		}
	}
	edges := [][2]string{
		{StepService, StepEnvironment},
		{StepRestartTimer, StepService},
		{StepMonitorTimer, StepService},
	}
	for _, e := range edges {
		if err := g.AddDependency(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Name returns the instance name.
func (a *Application) Name() string {
	return a.name
}

// Service returns the primary service.
func (a *Application) Service() *Service {
	return a.service
}

// EnvironmentFile returns the managed environment file.
func (a *Application) EnvironmentFile() *EnvironmentFile {
	return a.environment
}

// RestartTimer returns the restart timer.
func (a *Application) RestartTimer() *timer.Restart {
	return a.restart
}

// MonitorTimer returns the health-check timer.
func (a *Application) MonitorTimer() *timer.Monitor {
	return a.monitor
}

// Exists reports whether the instance's managed source directory is present.
func (a *Application) Exists() bool {
	return a.service.Exists()
}

// Steps returns the ensure order of the lifecycle steps.
func (a *Application) Steps() ([]string, error) {
	return a.steps.Order()
}

// Ensure converges the instance onto the current options. The first failing
// step stops the run; a later Ensure resumes from there.
func (a *Application) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(a.settings.ServiceRoot, 0755); err != nil { //nolint:gosec // service root holds world-readable compose trees
		return fmt.Errorf("failed to create service root %s: %w", a.settings.ServiceRoot, err)
	}

	order, err := a.steps.Order()
	if err != nil {
		return err
	}
	for _, step := range order {
		a.logger.Debug("Running ensure step", "name", a.name, "step", step)
		if err := a.ensureStep(ctx, step); err != nil {
			return err
		}
	}
	a.logger.Info("Instance ensured", "name", a.name)
	return nil
}

func (a *Application) ensureStep(ctx context.Context, step string) error {
	switch step {
	case StepEnvironment:
		return a.environment.Ensure()
	case StepService:
		return a.service.Ensure(ctx)
	case StepRestartTimer:
		return a.restart.Ensure(ctx)
	case StepMonitorTimer:
		return a.monitor.Ensure(ctx)
	default:
		return fmt.Errorf("unknown ensure step %q", step)
	}
}

// Remove deletes every file and unit of the instance. Each part is attempted
// even when an earlier one fails; all failures are returned together.
func (a *Application) Remove(ctx context.Context) error {
	a.logger.Info("Removing instance", "name", a.name)
	return errors.Join(
		a.environment.Remove(),
		a.service.Remove(ctx),
		a.restart.Remove(ctx),
		a.monitor.Remove(ctx),
	)
}
