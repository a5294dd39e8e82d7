// Package instance manages one compose application as a set of systemd units:
// the primary service, its environment file and its restart and monitor timers.
package instance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/trly/portinus/internal/config"
)

// Instance names end up in unit names, directory names and the wrapper
// script name.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.@-]*$`)

// Suffixes appended to an instance name for its environment file and its
// timer units. A name carrying one would share paths or units with another
// instance.
var reservedSuffixes = []string{".environment", "-restart", "-monitor"}

// ValidateName rejects names that cannot be used for units and paths.
func ValidateName(name string) error {
	if name == "" {
		return config.NewConfigurationError("name", fmt.Errorf("instance name must not be empty"))
	}
	if !namePattern.MatchString(name) {
		return config.NewConfigurationError("name", fmt.Errorf("invalid instance name %q: must match %s", name, namePattern.String()))
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return config.NewConfigurationError("name", fmt.Errorf("invalid instance name %q: must not end in %q", name, suffix))
		}
	}
	return nil
}
