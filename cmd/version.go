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
	"io"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// Build information set by goreleaser.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const releaseSlug = "trly/portinus"

// ReleaseDetector finds the newest published release.
type ReleaseDetector func(ctx context.Context) (*selfupdate.Release, bool, error)

func detectLatest(ctx context.Context) (*selfupdate.Release, bool, error) {
	return selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
}

// VersionCommand represents the version command.
type VersionCommand struct {
	detect ReleaseDetector
}

// NewVersionCommand creates a new VersionCommand.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{detect: detectLatest}
}

// GetCobraCommand returns the cobra command for displaying version information.
func (c *VersionCommand) GetCobraCommand() *cobra.Command {
	var check bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for portinus.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "portinus version %s\n", Version)
			_, _ = fmt.Fprintf(w, "  commit: %s\n", Commit)
			_, _ = fmt.Fprintf(w, "  built: %s\n", Date)
			_, _ = fmt.Fprintf(w, "  go: %s\n", runtime.Version())

			if check {
				c.checkForUpdates(cmd.Context(), w)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd.Flags().BoolVar(&check, "check", false, "Check GitHub releases for a newer version")

	return versionCmd
}

// checkForUpdates checks if a newer version is available and prints a message if so.
func (c *VersionCommand) checkForUpdates(ctx context.Context, w io.Writer) {
	if Version == "dev" {
		_, _ = fmt.Fprintln(w, "\nSkipping update check for development build.")
		return
	}

	_, _ = fmt.Fprintln(w, "\nChecking for updates...")

	latest, found, err := c.detect(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(w, "Failed to check for updates: %v\n", err)
		return
	}
	if !found {
		_, _ = fmt.Fprintln(w, "No release found")
		return
	}
	if latest.LessOrEqual(Version) {
		_, _ = fmt.Fprintln(w, "You are running the latest version.")
		return
	}

	_, _ = fmt.Fprintf(w, "Update available! New version: %s\n", latest.Version())
	_, _ = fmt.Fprintln(w, "Run 'portinus update' to update to the latest version.")
}
