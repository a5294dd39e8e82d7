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
)

// serviceAction is an operation on an instance's primary service.
type serviceAction func(ctx context.Context, svc *instance.Service) error

// RestartCommand represents the restart command.
type RestartCommand struct{}

// NewRestartCommand creates a new RestartCommand.
func NewRestartCommand() *RestartCommand {
	return &RestartCommand{}
}

// GetCobraCommand returns the cobra command for restarting an instance.
func (c *RestartCommand) GetCobraCommand() *cobra.Command {
	return serviceCommand("restart", "Restart an instance's service", "restarted",
		func(ctx context.Context, svc *instance.Service) error { return svc.Restart(ctx) })
}

// StopCommand represents the stop command.
type StopCommand struct{}

// NewStopCommand creates a new StopCommand.
func NewStopCommand() *StopCommand {
	return &StopCommand{}
}

// GetCobraCommand returns the cobra command for stopping an instance.
func (c *StopCommand) GetCobraCommand() *cobra.Command {
	return serviceCommand("stop", "Stop an instance's service", "stopped",
		func(ctx context.Context, svc *instance.Service) error { return svc.Stop(ctx) })
}

func serviceCommand(use, short, done string, action serviceAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			application, err := app.Application(cmd.Context(), args[0], instance.Options{})
			if err != nil {
				return err
			}
			if err := action(cmd.Context(), application.Service()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Instance %s %s\n", args[0], done)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
