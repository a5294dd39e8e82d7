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
	"io/fs"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/execx"
	"github.com/trly/portinus/internal/instance"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitInvalidState  = 3
	ExitPermission    = 4
)

// exitStatusError ends the process with a fixed status. Its message has
// already been reported, so it is not printed again.
type exitStatusError struct {
	code int
	err  error
}

func (e *exitStatusError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitStatusError) Unwrap() error {
	return e.err
}

// ExitCode maps an error returned by a command onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var status *exitStatusError
	if errors.As(err, &status) {
		return status.code
	}

	switch {
	case config.IsConfigurationError(err):
		return ExitConfiguration
	case instance.IsInvalidState(err):
		return ExitInvalidState
	case errors.Is(err, fs.ErrPermission):
		return ExitPermission
	default:
		return ExitFailure
	}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var status *exitStatusError
	return errors.As(err, &status)
}

// Message renders err as the one line printed before exiting.
func Message(err error) string {
	switch {
	case errors.Is(err, fs.ErrPermission) && !config.IsConfigurationError(err):
		return fmt.Sprintf("permission denied: %v (try running as root or with --user)", err)
	default:
		return err.Error()
	}
}

// passthrough keeps the wrapped command's exit status without printing the
// error on top of the command's own output.
func passthrough(err error) error {
	var exitErr *execx.ExitError
	if errors.As(err, &exitErr) {
		return &exitStatusError{code: exitErr.ExitCode, err: err}
	}
	return err
}
