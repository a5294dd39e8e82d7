// Package fakerunner provides a fake implementation of execx.Runner for testing.
package fakerunner

import (
	"context"
	"fmt"
	"strings"

	"github.com/trly/portinus/internal/execx"
)

// Runner is a fake implementation of execx.Runner for testing.
type Runner struct {
	outputs map[string][]byte
	errors  map[string]error
	calls   []Call
}

var _ execx.Runner = (*Runner)(nil)

// Call represents a captured command execution call.
type Call struct {
	Name string
	Args []string
}

// New creates a new fake runner.
func New() *Runner {
	return &Runner{
		outputs: make(map[string][]byte),
		errors:  make(map[string]error),
		calls:   []Call{},
	}
}

// SetOutput sets the output for a specific command.
func (r *Runner) SetOutput(name string, args []string, output []byte) {
	r.outputs[r.makeKey(name, args)] = output
}

// SetError sets the error for a specific command.
func (r *Runner) SetError(name string, args []string, err error) {
	r.errors[r.makeKey(name, args)] = err
}

// SetExitCode makes a specific command fail with the given exit status.
func (r *Runner) SetExitCode(name string, args []string, code int) {
	r.errors[r.makeKey(name, args)] = &execx.ExitError{
		Command:  strings.TrimSpace(name + " " + strings.Join(args, " ")),
		ExitCode: code,
	}
}

// CombinedOutput implements execx.Runner.
func (r *Runner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	return r.record(name, args)
}

// Output implements execx.Runner.
func (r *Runner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return r.record(name, args)
}

// Run implements execx.Runner.
func (r *Runner) Run(_ context.Context, name string, args ...string) error {
	_, err := r.record(name, args)
	return err
}

// GetCalls returns all captured command calls.
func (r *Runner) GetCalls() []Call {
	return r.calls
}

// Reset clears all stored outputs, errors, and calls.
func (r *Runner) Reset() {
	r.outputs = make(map[string][]byte)
	r.errors = make(map[string]error)
	r.calls = []Call{}
}

func (r *Runner) record(name string, args []string) ([]byte, error) {
	r.calls = append(r.calls, Call{Name: name, Args: args})

	key := r.makeKey(name, args)
	if err, exists := r.errors[key]; exists {
		return nil, err
	}
	if output, exists := r.outputs[key]; exists {
		return output, nil
	}

	// Default behavior - return empty output and no error
	return []byte{}, nil
}

func (r *Runner) makeKey(name string, args []string) string {
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}
