/*
Copyright © 2025 Travis Lyons travis.lyons@gmail.com

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/docker"
	"github.com/trly/portinus/internal/execx"
	"github.com/trly/portinus/internal/instance"
	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/monitor"
	"github.com/trly/portinus/internal/podman"
	"github.com/trly/portinus/internal/systemd"
)

type contextKey string

const appContextKey contextKey = "app"

// UnitManagerFactory connects to the host supervisor on first use.
type UnitManagerFactory func(ctx context.Context) (systemd.UnitManager, error)

// InspectorFactory opens the configured container runtime. The returned
// function releases the connection.
type InspectorFactory func(ctx context.Context) (monitor.ContainerInspector, func(), error)

// App holds the resolved configuration and the collaborators shared by all
// commands.
type App struct {
	Logger         log.Logger
	Config         *config.Settings
	ConfigProvider config.Provider
	Runner         execx.Runner
	NewUnitManager UnitManagerFactory
	NewInspector   InspectorFactory
	TextCaser      systemd.TextCaser
	unitManager    systemd.UnitManager
}

// NewApp creates a new App wired to the host's systemd and container runtime.
func NewApp(logger log.Logger, configProv config.Provider) *App {
	cfg := configProv.GetConfig()
	runner := execx.NewRealRunner()
	connections := systemd.NewConnectionFactory(logger)

	return &App{
		Logger:         logger,
		Config:         cfg,
		ConfigProvider: configProv,
		Runner:         runner,
		NewUnitManager: func(ctx context.Context) (systemd.UnitManager, error) {
			m, err := systemd.NewDefaultUnitManager(ctx, connections, cfg, logger, runner)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		NewInspector: func(ctx context.Context) (monitor.ContainerInspector, func(), error) {
			return openInspector(ctx, cfg, logger)
		},
		TextCaser: systemd.NewDefaultTextCaser(),
	}
}

func openInspector(ctx context.Context, cfg *config.Settings, logger log.Logger) (monitor.ContainerInspector, func(), error) {
	switch cfg.Runtime {
	case config.RuntimePodman:
		uri := cfg.RuntimeSocket
		if uri == "" {
			uri = podman.DefaultURI(cfg.UserMode)
		}
		inspector, err := podman.NewInspector(ctx, uri, logger)
		if err != nil {
			return nil, nil, err
		}
		return inspector, func() {}, nil
	case config.RuntimeDocker:
		inspector, err := docker.NewInspector(cfg.RuntimeSocket, logger)
		if err != nil {
			return nil, nil, err
		}
		return inspector, func() { _ = inspector.Close() }, nil
	default:
		return nil, nil, config.NewConfigurationError("runtime", fmt.Errorf("unsupported container runtime %q", cfg.Runtime))
	}
}

// UnitManager returns the unit manager, connecting on first use.
func (a *App) UnitManager(ctx context.Context) (systemd.UnitManager, error) {
	if a.unitManager == nil {
		m, err := a.NewUnitManager(ctx)
		if err != nil {
			return nil, err
		}
		a.unitManager = m
	}
	return a.unitManager, nil
}

// Application builds the instance called name.
func (a *App) Application(ctx context.Context, name string, opts instance.Options) (*instance.Application, error) {
	if err := instance.ValidateName(name); err != nil {
		return nil, err
	}
	units, err := a.UnitManager(ctx)
	if err != nil {
		return nil, err
	}
	return instance.NewApplication(name, opts, a.Config, units, a.Runner, a.Logger)
}

// getApp retrieves the App from the command context.
func getApp(ctx context.Context) *App {
	app, _ := ctx.Value(appContextKey).(*App)
	return app
}
