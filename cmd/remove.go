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

// RemoveCommand represents the remove command.
type RemoveCommand struct{}

// NewRemoveCommand creates a new RemoveCommand.
func NewRemoveCommand() *RemoveCommand {
	return &RemoveCommand{}
}

// GetCobraCommand returns the cobra command for removing an instance.
func (c *RemoveCommand) GetCobraCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an instance and all of its units",
		Long: `Stop and remove an instance: its service, restart and monitor timers, its
managed compose directory and environment file. Removing an instance that does
not exist is not an error.`,
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

// Run executes the remove command.
func (c *RemoveCommand) Run(ctx context.Context, app *App, name string, cmd *cobra.Command) error {
	application, err := app.Application(ctx, name, instance.Options{})
	if err != nil {
		return err
	}
	if !application.Exists() {
		app.Logger.Info("Instance has no managed directory, removing leftover units", "name", name)
	}
	if err := application.Remove(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Instance %s removed\n", name)
	return nil
}
