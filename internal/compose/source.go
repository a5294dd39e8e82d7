package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trly/portinus/internal/config"
	"github.com/trly/portinus/internal/fs"
	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/templates"
)

// Source is a validated pointer to a directory holding a group definition.
// The zero value is an absent source.
type Source struct {
	dir        string
	definition string
}

// NewSource validates dir. An empty dir yields an absent source; a dir that
// is missing or lacks a group definition is a configuration error.
func NewSource(dir string) (*Source, error) {
	if dir == "" {
		return &Source{}, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, config.NewConfigurationError("source", &LoadError{Kind: KindPath, Path: dir, Cause: err})
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, config.NewConfigurationError("source", &LoadError{Kind: KindPath, Path: dir, Cause: err})
	}
	if !info.IsDir() {
		return nil, config.NewConfigurationError("source", &LoadError{Kind: KindPath, Path: dir, Detail: "not a directory"})
	}

	definition := FindDefinition(abs)
	if definition == "" {
		return nil, config.NewConfigurationError("source", &LoadError{
			Kind:   KindNotFound,
			Path:   abs,
			Detail: "none of " + strings.Join(DefinitionCandidates, ", ") + " found",
		})
	}

	return &Source{dir: abs, definition: filepath.Base(definition)}, nil
}

// Present reports whether a source directory was supplied.
func (s *Source) Present() bool {
	return s != nil && s.dir != ""
}

// Dir returns the absolute source directory.
func (s *Source) Dir() string {
	return s.dir
}

// DefinitionName returns the base name of the group definition file.
func (s *Source) DefinitionName() string {
	return s.definition
}

// Command returns the argv prefix that invokes compose for runtime.
func Command(runtime string) []string {
	if runtime == config.RuntimePodman {
		return []string{"podman", "compose"}
	}
	return []string{"docker", "compose"}
}

// Tree is the managed copy of a source under the service root, together with
// the wrapper script used to drive it.
type Tree struct {
	name     string
	source   *Source
	settings *config.Settings
	renderer *templates.Renderer
	logger   log.Logger
}

// NewTree binds the managed tree for instance name to source.
func NewTree(name string, source *Source, settings *config.Settings, renderer *templates.Renderer, logger log.Logger) *Tree {
	if source == nil {
		source = &Source{}
	}
	return &Tree{
		name:     name,
		source:   source,
		settings: settings,
		renderer: renderer,
		logger:   logger,
	}
}

// Source returns the source the tree is built from.
func (t *Tree) Source() *Source {
	return t.source
}

// Dir returns the managed directory.
func (t *Tree) Dir() string {
	return t.settings.InstanceDir(t.name)
}

// WrapperPath returns the path of the generated wrapper script.
func (t *Tree) WrapperPath() string {
	return t.settings.WrapperPath(t.name)
}

// Exists reports whether the managed directory is present.
func (t *Tree) Exists() bool {
	info, err := os.Stat(t.Dir())
	return err == nil && info.IsDir()
}

// DefinitionPath returns the group definition inside the managed directory.
func (t *Tree) DefinitionPath() string {
	if t.source.Present() {
		return filepath.Join(t.Dir(), t.source.DefinitionName())
	}
	return FindDefinition(t.Dir())
}

// Ensure replaces the managed directory with a fresh copy of the source and
// writes the wrapper script. The copy is staged next to the managed directory
// and renamed into place.
func (t *Tree) Ensure() error {
	if !t.source.Present() {
		return config.NewConfigurationError("source", errors.New("no valid source specified"))
	}

	root := t.settings.ServiceRoot
	if err := os.MkdirAll(root, 0755); err != nil { //nolint:gosec // service root holds world-readable compose trees
		return fmt.Errorf("failed to create service root %s: %w", root, err)
	}

	staging, err := os.MkdirTemp(root, "."+t.name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	t.logger.Debug("Copying source", "from", t.source.Dir(), "to", staging)
	if err := fs.CopyTree(t.source.Dir(), staging); err != nil {
		return fmt.Errorf("failed to copy %s: %w", t.source.Dir(), err)
	}
	info, err := os.Stat(t.source.Dir())
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", t.source.Dir(), err)
	}
	if err := os.Chmod(staging, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", staging, err)
	}

	if err := t.Remove(); err != nil {
		return err
	}
	if err := os.Rename(staging, t.Dir()); err != nil {
		return fmt.Errorf("failed to install %s: %w", t.Dir(), err)
	}

	return t.writeWrapper()
}

// Remove deletes the managed directory. A missing directory is not an error.
func (t *Tree) Remove() error {
	// RemoveAll reports nil for a missing path; other failures propagate.
	if err := os.RemoveAll(t.Dir()); err != nil {
		return fmt.Errorf("failed to remove %s: %w", t.Dir(), err)
	}
	return nil
}

// StartCommand is the unit's ExecStart line.
func (t *Tree) StartCommand() string {
	return templates.ExecLine(t.WrapperPath(), "up")
}

// StopCommand is the unit's ExecStop line.
func (t *Tree) StopCommand() string {
	return templates.ExecLine(t.WrapperPath(), "down")
}

func (t *Tree) writeWrapper() error {
	argv := append(Command(t.settings.Runtime), "--project-name", t.name, "--file", t.DefinitionPath())
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = templates.ShellQuote(arg)
	}

	content, err := t.renderer.Render(templates.Wrapper, templates.WrapperData{
		Name:      t.name,
		Directory: t.Dir(),
		Compose:   strings.Join(quoted, " "),
	})
	if err != nil {
		return err
	}

	t.logger.Debug("Writing wrapper script", "path", t.WrapperPath())
	return fs.WriteFileAtomic(t.WrapperPath(), []byte(content), 0755)
}
