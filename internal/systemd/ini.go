package systemd

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// UnitFile is a parsed systemd unit file.
type UnitFile struct {
	Path string
	File *ini.File
}

// ReadUnitFile parses the unit file at path. Repeated keys such as multiple
// ExecStartPre lines are kept as shadows.
func ReadUnitFile(path string) (*UnitFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Unit paths are derived from configuration
	if err != nil {
		return nil, err
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:        true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit file %s: %w", path, err)
	}
	return &UnitFile{Path: path, File: file}, nil
}

// Value returns the value of key in section, or "" when either is missing.
func (u *UnitFile) Value(section, key string) string {
	sec, err := u.File.GetSection(section)
	if err != nil {
		return ""
	}
	if !sec.HasKey(key) {
		return ""
	}
	return sec.Key(key).String()
}

// Values returns every value of a repeated key in section.
func (u *UnitFile) Values(section, key string) []string {
	sec, err := u.File.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return nil
	}
	return sec.Key(key).ValueWithShadows()
}
