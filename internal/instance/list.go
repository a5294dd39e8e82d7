package instance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/trly/portinus/internal/config"
)

// List returns the names of the instances under the service root, sorted.
// Staging directories left by an interrupted ensure are skipped.
func List(settings *config.Settings) ([]string, error) {
	entries, err := os.ReadDir(settings.ServiceRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read service root %s: %w", settings.ServiceRoot, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if ValidateName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Installed reports whether the managed directory of instance name is present.
func Installed(settings *config.Settings, name string) bool {
	info, err := os.Stat(settings.InstanceDir(name))
	return err == nil && info.IsDir()
}
