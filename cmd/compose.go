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

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/instance"
)

// ComposeCommand represents the compose passthrough command.
type ComposeCommand struct{}

// NewComposeCommand creates a new ComposeCommand.
func NewComposeCommand() *ComposeCommand {
	return &ComposeCommand{}
}

// GetCobraCommand returns the cobra command for running compose against an instance.
func (c *ComposeCommand) GetCobraCommand() *cobra.Command {
	composeCmd := &cobra.Command{
		Use:   "compose <name> [args...]",
		Short: "Run a compose subcommand against an instance",
		Long: `Run a compose subcommand (ps, logs, exec, ...) against an instance's managed
directory through its wrapper script. The exit status of compose is returned.`,
		Example: `  portinus compose wiki ps
  portinus compose wiki logs -f --tail 50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return c.Run(cmd.Context(), app, args[0], args[1:])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Everything after the instance name belongs to compose.
	composeCmd.Flags().SetInterspersed(false)

	return composeCmd
}

// Run executes the compose command.
func (c *ComposeCommand) Run(ctx context.Context, app *App, name string, args []string) error {
	if err := instance.ValidateName(name); err != nil {
		return err
	}
	// Checked before the unit manager is built.
	if !instance.Installed(app.Config, name) {
		return &instance.InvalidStateError{Name: name, Reason: "does not exist"}
	}

	application, err := app.Application(ctx, name, instance.Options{})
	if err != nil {
		return err
	}
	return passthrough(application.Service().Compose(ctx, args...))
}
