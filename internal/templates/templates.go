// Package templates renders the unit files and wrapper scripts portinus installs.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/trly/portinus/internal/log"
)

// Template names.
const (
	InstanceService = "instance.service"
	RestartService  = "restart.service"
	RestartTimer    = "restart.timer"
	MonitorService  = "monitor.service"
	MonitorTimer    = "monitor.timer"
	Wrapper         = "wrapper.sh"
)

const templateExt = ".tmpl"

//go:embed files/*.tmpl
var defaultFS embed.FS

// InstanceData fills the primary instance service unit.
type InstanceData struct {
	Name             string
	RuntimeUnit      string
	EnvironmentFile  string
	WorkingDirectory string
	StartCommand     string
	StopCommand      string
	WantedBy         string
}

// RestartData fills the restart action unit and its timer.
type RestartData struct {
	Name        string
	ServiceName string
	ActionUnit  string
	Systemctl   string
	UserMode    bool
	Schedule    string
}

// MonitorData fills the health-check action unit and its timer.
type MonitorData struct {
	Name       string
	Command    string
	ActionUnit string
	Schedule   string
}

// WrapperData fills the wrapper script placed in an instance directory.
type WrapperData struct {
	Name      string
	Directory string
	Compose   string
}

// Renderer renders named templates, preferring files in an override
// directory over the embedded defaults.
type Renderer struct {
	dir    string
	logger log.Logger
}

// NewRenderer creates a renderer. An empty dir uses only embedded templates.
func NewRenderer(dir string, logger log.Logger) *Renderer {
	return &Renderer{dir: dir, logger: logger}
}

// Render executes the template called name with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	text, err := r.source(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"quote": ShellQuote,
			"exec":  ExecQuote,
			"unit":  UnitEscape,
		}).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) source(name string) (string, error) {
	file := name + templateExt

	if r.dir != "" {
		path := filepath.Join(r.dir, file)
		content, err := os.ReadFile(path) //nolint:gosec // Template directory is operator configuration
		switch {
		case err == nil:
			r.logger.Debug("Using template override", "path", path)
			return string(content), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("failed to read template %s: %w", path, err)
		}
	}

	content, err := defaultFS.ReadFile("files/" + file)
	if err != nil {
		return "", fmt.Errorf("unknown template %s: %w", name, err)
	}
	return string(content), nil
}

// ShellQuote quotes s for safe use as a single POSIX shell word.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ExecLine joins args into a unit Exec line, quoting each argument as needed.
func ExecLine(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = ExecQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// ExecQuote quotes s as a single word of a unit Exec line. Specifiers and
// variable references are escaped so systemd passes s through unchanged.
func ExecQuote(s string) string {
	s = strings.NewReplacer("%", "%%", "$", "$$").Replace(s)
	if s != "" && strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// UnitEscape escapes specifiers in a plain unit file value.
func UnitEscape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:@=+,%", r)
}
