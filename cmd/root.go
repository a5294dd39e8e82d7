// Package cmd provides the command line interface for portinus
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
	"os"

	"github.com/spf13/cobra"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/log"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigFile  string
	ServiceRoot string
	UnitDir     string
	Runtime     string
	UserMode    bool
	Verbose     int
}

// RootCommand represents the root command for portinus CLI.
type RootCommand struct{}

// NewRootCommand creates a new RootCommand.
func NewRootCommand() *RootCommand {
	return &RootCommand{}
}

// GetCobraCommand returns the cobra root command for portinus CLI.
func (c *RootCommand) GetCobraCommand() *cobra.Command {
	var opts RootOptions

	rootCmd := &cobra.Command{
		Use:   "portinus",
		Short: "Portinus runs compose applications as systemd services.",
		Long: `Portinus runs compose applications as systemd services.
It copies a compose directory into a managed location, installs a systemd unit
that starts and stops it, and optionally installs timers that restart it on a
schedule or when its containers become unhealthy.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if getApp(ctx) != nil {
				return nil
			}

			app, err := c.buildApp(cmd, opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, appContextKey, app))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to the configuration file")
	flags.StringVar(&opts.ServiceRoot, "service-root", "", "Directory holding the managed instances")
	flags.StringVar(&opts.UnitDir, "unit-dir", "", "Directory systemd unit files are written to")
	flags.StringVar(&opts.Runtime, "runtime", "", "Container runtime (docker, podman)")
	flags.BoolVarP(&opts.UserMode, "user", "u", false, "Manage units of the user service manager")
	flags.CountVarP(&opts.Verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	rootCmd.AddCommand(
		NewEnsureCommand().GetCobraCommand(),
		NewRemoveCommand().GetCobraCommand(),
		NewRestartCommand().GetCobraCommand(),
		NewStopCommand().GetCobraCommand(),
		NewListCommand().GetCobraCommand(),
		NewComposeCommand().GetCobraCommand(),
		NewMonitorCommand().GetCobraCommand(),
		NewStatusCommand().GetCobraCommand(),
		NewValidateCommand().GetCobraCommand(),
		NewDoctorCommand().GetCobraCommand(),
		NewConfigCommand().GetCobraCommand(),
		NewVersionCommand().GetCobraCommand(),
		NewUpdateCommand().GetCobraCommand(),
	)

	return rootCmd
}

func (c *RootCommand) buildApp(cmd *cobra.Command, opts RootOptions) (*App, error) {
	provider := config.NewDefaultConfigProvider()
	if opts.ConfigFile != "" {
		provider.SetConfigFilePath(opts.ConfigFile)
	}
	cfg, err := provider.InitConfig()
	if err != nil {
		return nil, err
	}

	applyFlags(cmd, cfg, opts)

	if cfg.BinaryPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, config.NewConfigurationError("binaryPath", err)
		}
		cfg.BinaryPath = exe
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Init(cfg.Verbose)
	logger := log.GetLogger()
	if used := provider.ConfigFileUsed(); used != "" {
		logger.Info("Using config", "path", used)
	}
	return NewApp(logger, provider), nil
}

// applyFlags layers explicitly set global flags over the loaded settings.
func applyFlags(cmd *cobra.Command, cfg *config.Settings, opts RootOptions) {
	if opts.UserMode || cfg.UserMode {
		cfg.ApplyUserMode()
	}
	if cmd.Flags().Changed("service-root") {
		cfg.ServiceRoot = opts.ServiceRoot
	}
	if cmd.Flags().Changed("unit-dir") {
		cfg.UnitDir = opts.UnitDir
	}
	if cmd.Flags().Changed("runtime") {
		cfg.Runtime = opts.Runtime
	}
	if opts.Verbose > cfg.Verbose {
		cfg.Verbose = opts.Verbose
	}
}

// requireApp fetches the App installed by the root command.
func requireApp(cmd *cobra.Command) (*App, error) {
	app := getApp(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("%s: command context is not initialised", cmd.CommandPath())
	}
	return app, nil
}
