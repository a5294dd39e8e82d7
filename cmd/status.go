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
	"strings"

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/compose"
	"github.com/trly/portinus/internal/dependency"
	"github.com/trly/portinus/internal/fs"
	"github.com/trly/portinus/internal/instance"
	"github.com/trly/portinus/internal/systemd"
)

// StatusOptions holds status command options.
type StatusOptions struct {
	Output string
	Logs   int
}

// UnitStatus describes one unit of an instance.
type UnitStatus struct {
	Role     string `json:"role" yaml:"role"`
	Unit     string `json:"unit" yaml:"unit"`
	State    string `json:"state" yaml:"state"`
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// InstanceStatus is the output of the status command.
type InstanceStatus struct {
	Name        string       `json:"name" yaml:"name"`
	Exists      bool         `json:"exists" yaml:"exists"`
	Directory   string       `json:"directory" yaml:"directory"`
	Environment string       `json:"environment,omitempty" yaml:"environment,omitempty"`
	Units       []UnitStatus `json:"units" yaml:"units"`
	Services    []string     `json:"services,omitempty" yaml:"services,omitempty"`
	Logs        string       `json:"logs,omitempty" yaml:"logs,omitempty"`
}

// StatusCommand represents the status command.
type StatusCommand struct{}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

// GetCobraCommand returns the cobra command for showing an instance.
func (c *StatusCommand) GetCobraCommand() *cobra.Command {
	var opts StatusOptions

	statusCmd := &cobra.Command{
		Use:   "status <name>",
		Short: "Show the units and compose services of an instance",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			opts.Output = strings.ToLower(opts.Output)
			return validateOutputFormat(opts.Output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return c.Run(cmd.Context(), app, args[0], opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	statusCmd.Flags().StringVarP(&opts.Output, "output", "o", OutputTable, "Output format (table, json, yaml)")
	statusCmd.Flags().IntVarP(&opts.Logs, "logs", "n", 0, "Include this many recent journal lines of the service")

	return statusCmd
}

// Run executes the status command.
func (c *StatusCommand) Run(ctx context.Context, app *App, name string, opts StatusOptions, cmd *cobra.Command) error {
	status, err := c.collect(ctx, app, name, opts)
	if err != nil {
		return err
	}

	if opts.Output != OutputTable {
		return printStructured(cmd.OutOrStdout(), opts.Output, status)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Instance:    %s\n", status.Name)
	_, _ = fmt.Fprintf(w, "Directory:   %s\n", status.Directory)
	if !status.Exists {
		_, _ = fmt.Fprintln(w, "             (not installed)")
	}
	if status.Environment != "" {
		_, _ = fmt.Fprintf(w, "Environment: %s\n", status.Environment)
	}
	_, _ = fmt.Fprintln(w)

	tbl := newTable(w, "Role", "Unit", "State", "Schedule")
	for _, u := range status.Units {
		schedule := u.Schedule
		if schedule == "" {
			schedule = "-"
		}
		tbl.AddRow(u.Role, u.Unit, u.State, schedule)
	}
	tbl.Print()

	if len(status.Services) > 0 {
		_, _ = fmt.Fprintf(w, "\nCompose services: %s\n", strings.Join(status.Services, ", "))
	}
	if status.Logs != "" {
		_, _ = fmt.Fprintf(w, "\nRecent logs:\n%s\n", status.Logs)
	}
	return nil
}

func (c *StatusCommand) collect(ctx context.Context, app *App, name string, opts StatusOptions) (*InstanceStatus, error) {
	application, err := app.Application(ctx, name, instance.Options{})
	if err != nil {
		return nil, err
	}
	units, err := app.UnitManager(ctx)
	if err != nil {
		return nil, err
	}

	svc := application.Service()
	status := &InstanceStatus{
		Name:      name,
		Exists:    application.Exists(),
		Directory: svc.Tree().Dir(),
	}

	envPath := application.EnvironmentFile().Path()
	if ok, _ := fs.Exists(envPath); ok {
		status.Environment = envPath
	}

	roles := []struct {
		role string
		unit systemd.Unit
	}{
		{role: "service", unit: svc.Unit()},
		{role: "restart timer", unit: application.RestartTimer().TimerUnit()},
		{role: "monitor timer", unit: application.MonitorTimer().TimerUnit()},
	}
	for _, r := range roles {
		us := UnitStatus{
			Role:  app.TextCaser.Title(r.role),
			Unit:  r.unit.GetServiceName(),
			State: "not installed",
		}
		if ok, _ := fs.Exists(r.unit.GetPath()); ok {
			us.State = unitState(ctx, app, r.unit)
			if r.unit.GetUnitType() == systemd.UnitTypeTimer {
				us.Schedule = timerSchedule(r.unit)
			}
		}
		status.Units = append(status.Units, us)
	}

	if status.Exists {
		status.Services = c.services(ctx, app, name, svc.Tree().DefinitionPath(), status.Environment)
	}
	if opts.Logs > 0 {
		status.Logs = units.RecentLogs(ctx, svc.Unit().GetServiceName(), opts.Logs)
	}
	return status, nil
}

// services lists the compose services in start order. Load failures are
// logged and yield no services.
func (c *StatusCommand) services(ctx context.Context, app *App, name, definition, envFile string) []string {
	if definition == "" {
		return nil
	}
	loadOpts := &compose.LoadOptions{ProjectName: name}
	if envFile != "" {
		loadOpts.EnvFiles = []string{envFile}
	}

	project, err := compose.Load(ctx, definition, loadOpts)
	if err != nil {
		app.Logger.Warn("Failed to load compose definition", "path", definition, "error", err)
		return nil
	}
	graph, err := dependency.FromProject(project)
	if err != nil {
		app.Logger.Warn("Failed to order compose services", "error", err)
		return project.ServiceNames()
	}
	order, err := graph.Order()
	if err != nil {
		return project.ServiceNames()
	}
	return order
}
