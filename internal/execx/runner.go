// Package execx provides a testable abstraction for command execution.
package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner defines an interface for executing external commands.
type Runner interface {
	// CombinedOutput executes a command and returns its combined stdout and stderr output.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// Output executes a command and returns only its stdout. Stderr is
	// included in the returned error when the command fails.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Run executes a command attached to the caller's standard streams.
	Run(ctx context.Context, name string, args ...string) error
}

// ExitError reports a command that ran and exited with a non-zero status.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Cause    error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// ExitCode extracts the exit status carried by err. It returns 0 for nil and
// 1 for errors that did not come from a finished process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}

// RealRunner implements Runner using os/exec.
type RealRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRealRunner creates a new RealRunner wired to the process standard streams.
func NewRealRunner() *RealRunner {
	return &RealRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CombinedOutput executes a command and returns its combined stdout and stderr output.
func (r *RealRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return out, wrapExitError(name, args, "", err)
}

// Output executes a command and returns its stdout.
func (r *RealRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	return out, wrapExitError(name, args, strings.TrimSpace(stderr.String()), err)
}

// Run executes a command attached to the runner's streams.
func (r *RealRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return wrapExitError(name, args, "", cmd.Run())
}

func wrapExitError(name string, args []string, stderr string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Command:  strings.TrimSpace(name + " " + strings.Join(args, " ")),
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr,
			Cause:    err,
		}
	}
	return err
}
