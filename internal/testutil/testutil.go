// Package testutil provides common test utilities and helpers to reduce boilerplate in test files.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/log"
)

// NewTestLogger creates a logger that writes to t.Logf for testing.
// This ensures test output is properly captured by the test framework.
func NewTestLogger(t testing.TB) log.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	handler := &testHandler{t: t, opts: opts}
	return log.NewSlogAdapter(slog.New(handler))
}

// SettingsOption allows customization of test settings.
type SettingsOption func(*config.Settings)

// WithRuntime sets the container runtime.
func WithRuntime(runtime string) SettingsOption {
	return func(cfg *config.Settings) {
		cfg.Runtime = runtime
	}
}

// WithTemplateDir sets a template override directory.
func WithTemplateDir(dir string) SettingsOption {
	return func(cfg *config.Settings) {
		cfg.TemplateDir = dir
	}
}

// WithMetricsDir sets the metrics textfile directory.
func WithMetricsDir(dir string) SettingsOption {
	return func(cfg *config.Settings) {
		cfg.MetricsDir = dir
	}
}

// NewSettings creates settings whose service root and unit directory live in
// per-test temporary directories.
func NewSettings(t testing.TB, opts ...SettingsOption) *config.Settings {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &config.Settings{
		ServiceRoot:     filepath.Join(tmpDir, "services"),
		UnitDir:         filepath.Join(tmpDir, "units"),
		Runtime:         config.RuntimeDocker,
		MonitorSchedule: config.DefaultMonitorSchedule,
		BinaryPath:      "/usr/local/bin/portinus",
		Verbose:         2,
	}
	require.NoError(t, os.MkdirAll(cfg.ServiceRoot, 0750))
	require.NoError(t, os.MkdirAll(cfg.UnitDir, 0750))

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WriteComposeSource creates a source directory containing a minimal compose
// definition plus the extra files given, and returns its path.
func WriteComposeSource(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(dir, 0750))

	if _, ok := files["docker-compose.yml"]; !ok {
		if files == nil {
			files = map[string]string{}
		}
		files["docker-compose.yml"] = "services:\n  web:\n    image: nginx:alpine\n"
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	return dir
}

// testHandler implements slog.Handler to write to testing.TB.
type testHandler struct {
	t     testing.TB
	opts  *slog.HandlerOptions
	attrs []slog.Attr
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testHandler) Handle(_ context.Context, record slog.Record) error {
	args := make([]any, 0, record.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		args = append(args, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		args = append(args, a)
		return true
	})
	h.t.Logf("[%s] %s %v", record.Level.String(), record.Message, args)
	return nil
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts, attrs: h.attrs}
}
