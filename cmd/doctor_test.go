package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/monitor"
	"github.com/trly/portinus/internal/systemd"
)

func newDoctorEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	binary := filepath.Join(t.TempDir(), "portinus")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0700)) //nolint:gosec // test executable
	env.settings.BinaryPath = binary
	return env
}

func TestDoctorCommandAllPassed(t *testing.T) {
	env := newDoctorEnv(t)
	env.inspector.Containers = []monitor.Container{{ID: "c1"}}

	out, err := env.execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "All checks passed")
}

func TestDoctorCommandFailures(t *testing.T) {
	env := newDoctorEnv(t)
	env.settings.UnitDir = filepath.Join(t.TempDir(), "missing")
	env.app.NewUnitManager = func(context.Context) (systemd.UnitManager, error) {
		return nil, errors.New("systemctl not found")
	}
	env.inspector.Err = errors.New("connection refused")

	out, err := env.execute(t, "doctor", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 issues")

	var results []CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	failed := map[string]string{}
	for _, r := range results {
		if !r.Passed {
			failed[r.Name] = r.Message
		}
	}
	assert.Equal(t, "systemctl not found", failed["Systemd"])
	assert.Contains(t, failed["Unit Directory"], "does not exist")
	assert.Equal(t, "connection refused", failed["Container Runtime (docker)"])
}

func TestDoctorCheckDirectory(t *testing.T) {
	c := NewDoctorCommand()
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	assert.True(t, c.checkDirectory("Root", dir, false).Passed)
	assert.True(t, c.checkDirectory("Root", filepath.Join(dir, "later"), true).Passed)
	assert.False(t, c.checkDirectory("Root", filepath.Join(dir, "later"), false).Passed)
	assert.False(t, c.checkDirectory("Root", file, false).Passed)
	assert.False(t, c.checkDirectory("Root", "", true).Passed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "probe file is cleaned up")
}

func TestDoctorCheckBinary(t *testing.T) {
	env := newDoctorEnv(t)
	c := NewDoctorCommand()
	assert.True(t, c.checkBinary(env.app).Passed)

	env.settings.BinaryPath = filepath.Join(t.TempDir(), "nope")
	assert.False(t, c.checkBinary(env.app).Passed)
}
