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
	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/dependency"
)

// ValidateOptions holds validate command options.
type ValidateOptions struct {
	EnvironmentFile string
}

// ValidateCommand represents the validate command.
type ValidateCommand struct{}

// NewValidateCommand creates a new ValidateCommand.
func NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{}
}

// GetCobraCommand returns the cobra command for validating a compose directory.
func (c *ValidateCommand) GetCobraCommand() *cobra.Command {
	var opts ValidateOptions

	validateCmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a compose directory without installing it",
		Long: `Load and validate the compose definition in a directory the same way ensure
would, printing its services in start order. Nothing on the host is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), args[0], opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	validateCmd.Flags().StringVarP(&opts.EnvironmentFile, "env", "e", "", "Environment file used for variable interpolation")

	return validateCmd
}

// Run executes the validate command.
func (c *ValidateCommand) Run(ctx context.Context, dir string, opts ValidateOptions, cmd *cobra.Command) error {
	source, err := compose.NewSource(dir)
	if err != nil {
		return err
	}

	loadOpts := &compose.LoadOptions{}
	if opts.EnvironmentFile != "" {
		loadOpts.EnvFiles = []string{opts.EnvironmentFile}
	}
	project, err := compose.Load(ctx, source.Dir(), loadOpts)
	if err != nil {
		return config.NewConfigurationError("compose", err)
	}

	graph, err := dependency.FromProject(project)
	if err != nil {
		return config.NewConfigurationError("compose", err)
	}
	order, err := graph.Order()
	if err != nil {
		return config.NewConfigurationError("compose", err)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s is valid (project %s)\n", source.DefinitionName(), project.Name)
	_, _ = fmt.Fprintf(w, "Services: %s\n", strings.Join(order, ", "))
	return nil
}
