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

// EnsureCommand represents the ensure command.
type EnsureCommand struct{}

// NewEnsureCommand creates a new EnsureCommand.
func NewEnsureCommand() *EnsureCommand {
	return &EnsureCommand{}
}

// GetCobraCommand returns the cobra command for creating or updating an instance.
func (c *EnsureCommand) GetCobraCommand() *cobra.Command {
	var opts instance.Options

	ensureCmd := &cobra.Command{
		Use:   "ensure <name>",
		Short: "Create or update an instance",
		Long: `Create or update an instance from a compose directory.

The directory is copied under the service root, a wrapper script and a systemd
service are written, and the service is restarted and enabled. A restart
schedule installs a timer that restarts the service on that calendar
expression; without one any previous restart timer is removed. A health-check
timer is always installed.`,
		Example: `  portinus ensure wiki --source ./wiki --env ./wiki.env --restart weekly`,
		Args:    cobra.ExactArgs(1),
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

	ensureCmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Directory containing the compose definition")
	ensureCmd.Flags().StringVarP(&opts.EnvironmentFile, "env", "e", "", "Environment file passed to the service")
	ensureCmd.Flags().StringVarP(&opts.RestartSchedule, "restart", "r", "", "systemd calendar expression for periodic restarts (e.g. daily, weekly)")
	_ = ensureCmd.MarkFlagRequired("source")
	_ = ensureCmd.MarkFlagDirname("source")
	_ = ensureCmd.MarkFlagFilename("env")

	return ensureCmd
}

// Run executes the ensure command.
func (c *EnsureCommand) Run(ctx context.Context, app *App, name string, opts instance.Options, cmd *cobra.Command) error {
	application, err := app.Application(ctx, name, opts)
	if err != nil {
		return err
	}
	if err := application.Ensure(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Instance %s is up to date\n", name)
	return nil
}
