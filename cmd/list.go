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
	"strings"

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/instance"
	"github.com/trly/portinus/internal/systemd"
)

// ListOptions holds list command options.
type ListOptions struct {
	Output string
}

// InstanceSummary is one row of the list output.
type InstanceSummary struct {
	Name    string `json:"name" yaml:"name"`
	State   string `json:"state" yaml:"state"`
	Restart string `json:"restart,omitempty" yaml:"restart,omitempty"`
	Monitor string `json:"monitor" yaml:"monitor"`
}

// ListCommand represents the list command.
type ListCommand struct{}

// NewListCommand creates a new ListCommand.
func NewListCommand() *ListCommand {
	return &ListCommand{}
}

// GetCobraCommand returns the cobra command for listing instances.
func (c *ListCommand) GetCobraCommand() *cobra.Command {
	var opts ListOptions

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List managed instances",
		Args:    cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			opts.Output = strings.ToLower(opts.Output)
			return validateOutputFormat(opts.Output)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return c.Run(cmd.Context(), app, opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	listCmd.Flags().StringVarP(&opts.Output, "output", "o", OutputTable, "Output format (table, json, yaml)")
	_ = listCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return allowedOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return listCmd
}

// Run executes the list command.
func (c *ListCommand) Run(ctx context.Context, app *App, opts ListOptions, cmd *cobra.Command) error {
	names, err := instance.List(app.Config)
	if err != nil {
		return err
	}

	units, err := app.UnitManager(ctx)
	if err != nil {
		return err
	}

	summaries := make([]InstanceSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, InstanceSummary{
			Name:    name,
			State:   unitState(ctx, app, units.GetUnit(name, systemd.UnitTypeService)),
			Restart: timerSchedule(units.GetUnit(name+"-restart", systemd.UnitTypeTimer)),
			Monitor: unitState(ctx, app, units.GetUnit(name+"-monitor", systemd.UnitTypeTimer)),
		})
	}

	if opts.Output != OutputTable {
		return printStructured(cmd.OutOrStdout(), opts.Output, summaries)
	}

	tbl := newTable(cmd.OutOrStdout(), "Name", "State", "Restart", "Monitor")
	for _, s := range summaries {
		restart := s.Restart
		if restart == "" {
			restart = "-"
		}
		tbl.AddRow(s.Name, s.State, restart, s.Monitor)
	}
	tbl.Print()
	return nil
}

// unitState returns the unit's ActiveState, or "unknown" when systemd cannot
// be asked.
func unitState(ctx context.Context, app *App, unit systemd.Unit) string {
	state, err := unit.GetStatus(ctx)
	if err != nil {
		app.Logger.Debug("Error getting unit status", "unit", unit.GetServiceName(), "error", err)
		return "unknown"
	}
	return state
}

// timerSchedule reads OnCalendar from an installed timer unit file.
func timerSchedule(unit systemd.Unit) string {
	file, err := systemd.ReadUnitFile(unit.GetPath())
	if err != nil {
		return ""
	}
	return file.Value("Timer", "OnCalendar")
}
