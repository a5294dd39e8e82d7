package instance

import (
	"context"
	"fmt"

	"github.com/trly/portinus/internal/compose"
	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/execx"
	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/systemd"
	"github.com/trly/portinus/internal/templates"
)

// Service is the primary unit of an instance. It runs the managed compose
// tree through the generated wrapper script.
type Service struct {
	name     string
	settings *config.Settings
	tree     *compose.Tree
	unit     systemd.Unit
	renderer *templates.Renderer
	runner   execx.Runner
	logger   log.Logger
}

// NewService binds instance name to source. A nil or absent source is fine for
// every operation except Ensure.
func NewService(name string, source *compose.Source, settings *config.Settings, units systemd.UnitManager, renderer *templates.Renderer, runner execx.Runner, logger log.Logger) *Service {
	return &Service{
		name:     name,
		settings: settings,
		tree:     compose.NewTree(name, source, settings, renderer, logger),
		unit:     units.GetUnit(name, systemd.UnitTypeService),
		renderer: renderer,
		runner:   runner,
		logger:   logger,
	}
}

// Name returns the instance name.
func (s *Service) Name() string {
	return s.name
}

// Unit returns the systemd unit of the service.
func (s *Service) Unit() systemd.Unit {
	return s.unit
}

// Tree returns the managed compose tree.
func (s *Service) Tree() *compose.Tree {
	return s.tree
}

// Exists reports whether the managed source directory is present.
func (s *Service) Exists() bool {
	return s.tree.Exists()
}

// Content renders the unit file body.
func (s *Service) Content() (string, error) {
	return s.renderer.Render(templates.InstanceService, templates.InstanceData{
		Name:             s.name,
		RuntimeUnit:      s.runtimeUnit(),
		EnvironmentFile:  s.settings.EnvironmentFilePath(s.name),
		WorkingDirectory: s.tree.Dir(),
		StartCommand:     s.tree.StartCommand(),
		StopCommand:      s.tree.StopCommand(),
		WantedBy:         s.wantedBy(),
	})
}

// Ensure installs a fresh copy of the source, then writes, reloads, restarts
// and enables the unit.
func (s *Service) Ensure(ctx context.Context) error {
	s.logger.Info("Ensuring service", "name", s.name, "source", s.tree.Source().Dir())
	if err := s.tree.Ensure(); err != nil {
		return err
	}

	content, err := s.Content()
	if err != nil {
		return err
	}
	if err := s.unit.Ensure(ctx, content); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", s.unit.GetServiceName(), err)
	}
	return nil
}

// Remove stops, disables and deletes the unit, then deletes the managed tree.
func (s *Service) Remove(ctx context.Context) error {
	s.logger.Info("Removing service", "name", s.name)
	if err := s.unit.Remove(ctx); err != nil {
		return fmt.Errorf("failed to remove %s: %w", s.unit.GetServiceName(), err)
	}
	return s.tree.Remove()
}

// Restart restarts the unit.
func (s *Service) Restart(ctx context.Context) error {
	s.logger.Info("Restarting service", "name", s.name)
	return s.unit.Restart(ctx)
}

// Stop stops the unit.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping service", "name", s.name)
	return s.unit.Stop(ctx)
}

// Status returns the unit's ActiveState.
func (s *Service) Status(ctx context.Context) (string, error) {
	return s.unit.GetStatus(ctx)
}

// Compose runs the wrapper script with args attached to the terminal. A
// non-zero exit surfaces as an *execx.ExitError carrying the status.
func (s *Service) Compose(ctx context.Context, args ...string) error {
	if err := s.requireExists(); err != nil {
		return err
	}
	s.logger.Debug("Running compose", "name", s.name, "args", args)
	return s.runner.Run(ctx, s.tree.WrapperPath(), args...)
}

// ComposeOutput runs the wrapper script with args and returns its stdout.
func (s *Service) ComposeOutput(ctx context.Context, args ...string) ([]byte, error) {
	if err := s.requireExists(); err != nil {
		return nil, err
	}
	s.logger.Debug("Running compose", "name", s.name, "args", args)
	return s.runner.Output(ctx, s.tree.WrapperPath(), args...)
}

func (s *Service) requireExists() error {
	if !s.Exists() {
		return &InvalidStateError{Name: s.name, Reason: "does not exist"}
	}
	return nil
}

func (s *Service) runtimeUnit() string {
	switch {
	case s.settings.Runtime == config.RuntimePodman:
		return "podman.socket"
	case s.settings.UserMode:
		// Rootless docker runs its daemon outside the user manager's view.
		return ""
	default:
		return "docker.service"
	}
}

func (s *Service) wantedBy() string {
	if s.settings.UserMode {
		return "default.target"
	}
	return "multi-user.target"
}
