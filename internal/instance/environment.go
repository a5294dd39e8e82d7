package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/fs"
	"github.com/trly/portinus/internal/log"
)

// EnvironmentFile mirrors an optional operator-supplied environment file to
// <service_root>/<name>.environment, where the service unit reads it.
type EnvironmentFile struct {
	name   string
	source string
	path   string
	logger log.Logger
}

// NewEnvironmentFile binds the managed environment file of instance name to
// source. An empty source is absent; a source that cannot be opened is a
// configuration error.
func NewEnvironmentFile(name, source string, settings *config.Settings, logger log.Logger) (*EnvironmentFile, error) {
	e := &EnvironmentFile{
		name:   name,
		path:   settings.EnvironmentFilePath(name),
		logger: logger,
	}
	if source == "" {
		return e, nil
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, config.NewConfigurationError("environment file", err)
	}
	f, err := os.Open(abs) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, config.NewConfigurationError("environment file", err)
	}
	info, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return nil, config.NewConfigurationError("environment file", err)
	}
	if info.IsDir() {
		return nil, config.NewConfigurationError("environment file", fmt.Errorf("%s is a directory", abs))
	}

	e.source = abs
	return e, nil
}

// Present reports whether a source file was supplied.
func (e *EnvironmentFile) Present() bool {
	return e.source != ""
}

// Source returns the absolute path of the supplied file, or "".
func (e *EnvironmentFile) Source() string {
	return e.source
}

// Path returns the managed copy's path.
func (e *EnvironmentFile) Path() string {
	return e.path
}

// Ensure overwrites the managed copy with the source, or deletes a previous
// copy when no source was supplied.
func (e *EnvironmentFile) Ensure() error {
	if !e.Present() {
		removed, err := fs.RemoveIfExists(e.path)
		if err != nil {
			return fmt.Errorf("failed to remove environment file %s: %w", e.path, err)
		}
		if removed {
			e.logger.Info("Removed environment file", "name", e.name, "path", e.path)
		}
		return nil
	}

	data, err := os.ReadFile(e.source)
	if err != nil {
		return fmt.Errorf("failed to read environment file %s: %w", e.source, err)
	}
	e.logger.Info("Copying environment file", "name", e.name, "from", e.source, "to", e.path)
	if err := fs.WriteFileAtomic(e.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write environment file %s: %w", e.path, err)
	}
	return nil
}

// Remove deletes the managed copy. A missing file is not an error.
func (e *EnvironmentFile) Remove() error {
	if _, err := fs.RemoveIfExists(e.path); err != nil {
		return fmt.Errorf("failed to remove environment file %s: %w", e.path, err)
	}
	return nil
}
