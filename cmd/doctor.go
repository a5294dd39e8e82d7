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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// DoctorOptions holds doctor command options.
type DoctorOptions struct {
	Output string
}

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name        string   `json:"name" yaml:"name"`
	Passed      bool     `json:"passed" yaml:"passed"`
	Message     string   `json:"message" yaml:"message"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// DoctorCommand represents the doctor command for portinus CLI.
type DoctorCommand struct{}

// NewDoctorCommand creates a new DoctorCommand.
func NewDoctorCommand() *DoctorCommand {
	return &DoctorCommand{}
}

// GetCobraCommand returns the cobra command for doctor operations.
func (c *DoctorCommand) GetCobraCommand() *cobra.Command {
	var opts DoctorOptions

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and configuration",
		Long: `Check that portinus can do its job on this host: the configuration file,
the systemd manager, the service root and unit directories, the container
runtime and the binary the monitor timers run.`,
		Args: cobra.NoArgs,
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

	doctorCmd.Flags().StringVarP(&opts.Output, "output", "o", OutputTable, "Output format (table, json, yaml)")

	return doctorCmd
}

// Run executes the doctor command.
func (c *DoctorCommand) Run(ctx context.Context, app *App, opts DoctorOptions, cmd *cobra.Command) error {
	results := []CheckResult{
		c.checkConfiguration(app),
		c.checkSystemd(ctx, app),
		c.checkDirectory("Service Root", app.Config.ServiceRoot, true),
		c.checkDirectory("Unit Directory", app.Config.UnitDir, false),
		c.checkRuntime(ctx, app),
		c.checkBinary(app),
	}

	failures := 0
	for _, r := range results {
		if !r.Passed {
			failures++
		}
	}

	if opts.Output != OutputTable {
		if err := printStructured(cmd.OutOrStdout(), opts.Output, results); err != nil {
			return err
		}
	} else {
		c.displayResults(cmd.OutOrStdout(), results, app.Config.Verbose > 0)
		if failures == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ All checks passed")
		}
	}

	if failures > 0 {
		return fmt.Errorf("doctor found %d issues", failures)
	}
	return nil
}

func (c *DoctorCommand) checkConfiguration(app *App) CheckResult {
	used := app.ConfigProvider.ConfigFileUsed()
	if used == "" {
		return CheckResult{Name: "Configuration File", Passed: true, Message: "No configuration file, using defaults"}
	}
	if _, err := os.Stat(used); err != nil {
		return CheckResult{
			Name:        "Configuration File",
			Message:     fmt.Sprintf("Configuration file not accessible: %v", err),
			Suggestions: []string{"Check file permissions on " + used},
		}
	}
	return CheckResult{Name: "Configuration File", Passed: true, Message: "Configuration loaded from " + used}
}

func (c *DoctorCommand) checkSystemd(ctx context.Context, app *App) CheckResult {
	units, err := app.UnitManager(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Systemd",
			Message: err.Error(),
			Suggestions: []string{
				"Ensure systemctl is in your PATH",
				"Use --user to manage units of your user session",
			},
		}
	}
	bus := "system"
	if units.UserMode() {
		bus = "user"
	}
	return CheckResult{Name: "Systemd", Passed: true, Message: fmt.Sprintf("Connected to the %s manager (%s)", bus, units.SystemctlPath())}
}

// checkDirectory validates a directory exists and is writable. A missing
// directory passes when portinus creates it on demand.
func (c *DoctorCommand) checkDirectory(name, path string, createdOnDemand bool) CheckResult {
	if path == "" {
		return CheckResult{Name: name, Message: "directory path is empty"}
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && createdOnDemand:
		return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%s will be created on first ensure", path)}
	case errors.Is(err, fs.ErrNotExist):
		return CheckResult{
			Name:        name,
			Message:     fmt.Sprintf("directory does not exist: %s", path),
			Suggestions: []string{fmt.Sprintf("Create directory: mkdir -p %s", path)},
		}
	case err != nil:
		return CheckResult{Name: name, Message: fmt.Sprintf("cannot access directory: %v", err)}
	case !info.IsDir():
		return CheckResult{Name: name, Message: fmt.Sprintf("path exists but is not a directory: %s", path)}
	}

	probe, err := os.CreateTemp(path, ".portinus-doctor-*")
	if err != nil {
		return CheckResult{
			Name:        name,
			Message:     fmt.Sprintf("directory is not writable: %v", err),
			Suggestions: []string{"Run as root, or use --user for per-user directories"},
		}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("Directory accessible at %s", path)}
}

func (c *DoctorCommand) checkRuntime(ctx context.Context, app *App) CheckResult {
	name := "Container Runtime (" + app.Config.Runtime + ")"
	inspector, closeInspector, err := app.NewInspector(ctx)
	if err != nil {
		return CheckResult{Name: name, Message: err.Error()}
	}
	defer closeInspector()

	containers, err := inspector.ListRunning(ctx)
	if err != nil {
		return CheckResult{
			Name:        name,
			Message:     err.Error(),
			Suggestions: []string{"Check that the runtime daemon or socket is running", "Set runtimeSocket in the configuration"},
		}
	}
	return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%d running containers", len(containers))}
}

func (c *DoctorCommand) checkBinary(app *App) CheckResult {
	path := app.Config.BinaryPath
	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{
			Name:        "Monitor Binary",
			Message:     fmt.Sprintf("%s: %v", path, err),
			Suggestions: []string{"Set binaryPath to the installed portinus executable"},
		}
	}
	if info.Mode()&0111 == 0 {
		return CheckResult{Name: "Monitor Binary", Message: fmt.Sprintf("%s is not executable", path)}
	}
	return CheckResult{Name: "Monitor Binary", Passed: true, Message: path}
}

// displayResults prints failed checks, or every check when verbose.
func (c *DoctorCommand) displayResults(w io.Writer, results []CheckResult, verbose bool) {
	for _, r := range results {
		switch {
		case r.Passed && verbose:
			_, _ = fmt.Fprintf(w, "✓ %s: %s\n", r.Name, r.Message)
		case !r.Passed:
			_, _ = fmt.Fprintf(w, "✗ %s: %s\n", r.Name, r.Message)
			for _, s := range r.Suggestions {
				_, _ = fmt.Fprintf(w, "    - %s\n", s)
			}
		}
	}
}
