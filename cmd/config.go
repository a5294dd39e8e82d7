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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/fs"
)

// ConfigCommand represents the config command for portinus CLI.
type ConfigCommand struct{}

// NewConfigCommand creates a new ConfigCommand.
func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{}
}

// GetCobraCommand returns the cobra command for config operations.
func (c *ConfigCommand) GetCobraCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
	}
	configCmd.AddCommand(
		NewConfigShowCommand().GetCobraCommand(),
		NewConfigInitCommand().GetCobraCommand(),
	)
	return configCmd
}

// ConfigShowCommand prints the resolved settings.
type ConfigShowCommand struct{}

// NewConfigShowCommand creates a new ConfigShowCommand.
func NewConfigShowCommand() *ConfigShowCommand {
	return &ConfigShowCommand{}
}

// GetCobraCommand returns the cobra command for config show.
func (c *ConfigShowCommand) GetCobraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  "Display the current configuration including defaults, the config file, environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if used := app.ConfigProvider.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			return printYAML(cmd.OutOrStdout(), app.Config)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// ConfigInitOptions holds config init command options.
type ConfigInitOptions struct {
	Path  string
	Force bool
}

// ConfigInitCommand writes a configuration file holding the defaults.
type ConfigInitCommand struct{}

// NewConfigInitCommand creates a new ConfigInitCommand.
func NewConfigInitCommand() *ConfigInitCommand {
	return &ConfigInitCommand{}
}

// GetCobraCommand returns the cobra command for config init.
func (c *ConfigInitCommand) GetCobraCommand() *cobra.Command {
	var opts ConfigInitOptions

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a default configuration file",
		Long: `Write a configuration file holding the default settings. Without --path the
file goes to /etc/portinus/config.yaml, or ~/.config/portinus/config.yaml with
--user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return c.Run(app, opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	initCmd.Flags().StringVar(&opts.Path, "path", "", "Where to write the configuration file")
	initCmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite existing configuration file")

	return initCmd
}

// Run executes the config init command.
func (c *ConfigInitCommand) Run(app *App, opts ConfigInitOptions, cmd *cobra.Command) error {
	path := opts.Path
	if path == "" {
		path = defaultConfigPath(app.Config.UserMode)
	}

	if ok, _ := fs.Exists(path); ok && !opts.Force {
		return config.NewConfigurationError(path, errors.New("configuration file already exists, use --force to overwrite"))
	}

	defaults := config.DefaultSettings()
	if app.Config.UserMode {
		defaults.ApplyUserMode()
	}
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // config directory is world-readable like /etc
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(path), err)
	}
	if err := fs.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", path)
	return nil
}

func defaultConfigPath(userMode bool) string {
	if userMode {
		return os.ExpandEnv(filepath.Join("$HOME", ".config", "portinus", "config.yaml"))
	}
	return filepath.Join("/etc", "portinus", "config.yaml")
}
