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

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/instance"
	"github.com/trly/portinus/internal/metrics"
	"github.com/trly/portinus/internal/monitor"
)

// MonitorCommand represents the health-check command run by the monitor timer.
type MonitorCommand struct{}

// NewMonitorCommand creates a new MonitorCommand.
func NewMonitorCommand() *MonitorCommand {
	return &MonitorCommand{}
}

// GetCobraCommand returns the cobra command for checking an instance's health.
func (c *MonitorCommand) GetCobraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor <name>",
		Short: "Check container health and restart the instance if needed",
		Long: `Check the health of every container of an instance that defines a health
check. If any is unhealthy the instance's service is restarted once and the
command exits with status 1. Containers still starting count as healthy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return c.Run(cmd.Context(), app, args[0], cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// Run executes the monitor command.
func (c *MonitorCommand) Run(ctx context.Context, app *App, name string, cmd *cobra.Command) error {
	application, err := app.Application(ctx, name, instance.Options{})
	if err != nil {
		return err
	}

	inspector, closeInspector, err := app.NewInspector(ctx)
	if err != nil {
		return err
	}
	defer closeInspector()

	var opts []monitor.Option
	if app.Config.MetricsDir != "" {
		opts = append(opts, monitor.WithRecorder(metrics.NewTextfile(app.Config.MetricsDir, app.Logger)))
	}
	checker := monitor.NewChecker(inspector, app.Logger, opts...)

	healthy, err := checker.Run(ctx, application.Service())
	if err != nil {
		return err
	}
	if !healthy {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Instance %s is unhealthy and was restarted\n", name)
		return &exitStatusError{code: ExitFailure}
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Instance %s is healthy\n", name)
	return nil
}
