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

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// UpdateCommand represents the update command.
type UpdateCommand struct {
	detect ReleaseDetector
}

// NewUpdateCommand creates a new UpdateCommand.
func NewUpdateCommand() *UpdateCommand {
	return &UpdateCommand{detect: detectLatest}
}

// GetCobraCommand returns the cobra command for updating the binary.
func (c *UpdateCommand) GetCobraCommand() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update portinus to the latest version",
		Long: `Update portinus to the latest version from GitHub releases.

Units generated by an older binary keep pointing at the same executable path,
so timers pick up the new version on their next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if Version == "dev" {
				return errors.New("refusing to update a development build")
			}

			_, _ = fmt.Fprintf(w, "Current version: %s\n", Version)
			_, _ = fmt.Fprintln(w, "Checking for updates...")

			latest, found, err := c.detect(ctx)
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}
			if !found {
				_, _ = fmt.Fprintln(w, "No release found")
				return nil
			}
			if latest.LessOrEqual(Version) {
				_, _ = fmt.Fprintln(w, "You are already running the latest version.")
				return nil
			}

			_, _ = fmt.Fprintf(w, "Update available! New version: %s\n", latest.Version())
			_, _ = fmt.Fprintln(w, "Downloading and applying update...")

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("failed to get executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("failed to update: %w", err)
			}

			_, _ = fmt.Fprintln(w, "Update completed successfully! Please restart portinus to use the new version.")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return updateCmd
}
