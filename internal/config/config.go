// Package config provides configuration management for portinus
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Provider defines the interface for configuration providers.
type Provider interface {
	// GetConfig returns the current application configuration.
	GetConfig() *Settings
	// SetConfig sets the application configuration.
	SetConfig(c *Settings)
	// InitConfig initializes the application configuration.
	InitConfig() (*Settings, error)
	// SetConfigFilePath sets the configuration file path.
	SetConfigFilePath(p string)
	// ConfigFileUsed returns the path of the loaded configuration file, if any.
	ConfigFileUsed() string
}

// Default configuration values for portinus.
const (
	DefaultServiceRoot     = "/usr/local/portinus-services"
	DefaultUnitDir         = "/etc/systemd/system"
	DefaultUserUnitDir     = "$HOME/.config/systemd/user"
	DefaultUserServiceRoot = "$HOME/.local/share/portinus-services"
	DefaultRuntime         = RuntimeDocker
	DefaultMonitorSchedule = "*:0/5"
	DefaultUserMode        = false
	DefaultVerbose         = 0
)

// Supported container runtimes.
const (
	RuntimeDocker = "docker"
	RuntimePodman = "podman"
)

// Settings represents the configuration for portinus. It is resolved once at
// startup and handed to every constructor that needs it.
type Settings struct {
	ServiceRoot     string `yaml:"serviceRoot" mapstructure:"serviceRoot"`
	UnitDir         string `yaml:"unitDir" mapstructure:"unitDir"`
	TemplateDir     string `yaml:"templateDir" mapstructure:"templateDir"`
	Runtime         string `yaml:"runtime" mapstructure:"runtime"`
	RuntimeSocket   string `yaml:"runtimeSocket" mapstructure:"runtimeSocket"`
	MonitorSchedule string `yaml:"monitorSchedule" mapstructure:"monitorSchedule"`
	BinaryPath      string `yaml:"binaryPath" mapstructure:"binaryPath"`
	MetricsDir      string `yaml:"metricsDir" mapstructure:"metricsDir"`
	UserMode        bool   `yaml:"userMode" mapstructure:"userMode"`
	Verbose         int    `yaml:"verbose" mapstructure:"verbose"`
}

// Validate checks the settings for values no component can work with.
func (s *Settings) Validate() error {
	if s.ServiceRoot == "" {
		return NewConfigurationError("serviceRoot", errors.New("must not be empty"))
	}
	if s.UnitDir == "" {
		return NewConfigurationError("unitDir", errors.New("must not be empty"))
	}
	switch s.Runtime {
	case RuntimeDocker, RuntimePodman:
	default:
		return NewConfigurationError("runtime", fmt.Errorf("unsupported container runtime %q (expected %s or %s)", s.Runtime, RuntimeDocker, RuntimePodman))
	}
	if strings.TrimSpace(s.MonitorSchedule) == "" {
		return NewConfigurationError("monitorSchedule", errors.New("must not be empty"))
	}
	return nil
}

// InstanceDir returns the managed source directory for an instance.
func (s *Settings) InstanceDir(name string) string {
	return filepath.Join(s.ServiceRoot, name)
}

// EnvironmentFilePath returns the managed environment file path for an instance.
func (s *Settings) EnvironmentFilePath(name string) string {
	return filepath.Join(s.ServiceRoot, name+".environment")
}

// WrapperPath returns the generated wrapper script path for an instance.
func (s *Settings) WrapperPath(name string) string {
	return filepath.Join(s.InstanceDir(name), name)
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		ServiceRoot:     DefaultServiceRoot,
		UnitDir:         DefaultUnitDir,
		Runtime:         DefaultRuntime,
		MonitorSchedule: DefaultMonitorSchedule,
		UserMode:        DefaultUserMode,
		Verbose:         DefaultVerbose,
	}
}

// ApplyUserMode switches path defaults to their per-user locations.
// Paths the user already customised are left untouched.
func (s *Settings) ApplyUserMode() {
	s.UserMode = true
	if s.ServiceRoot == DefaultServiceRoot {
		s.ServiceRoot = os.ExpandEnv(DefaultUserServiceRoot)
	}
	if s.UnitDir == DefaultUnitDir {
		s.UnitDir = os.ExpandEnv(DefaultUserUnitDir)
	}
}

// viperProvider implements the Provider interface on top of its own viper instance.
type viperProvider struct {
	v   *viper.Viper
	cfg *Settings
}

// NewDefaultConfigProvider creates a new viper backed config provider.
func NewDefaultConfigProvider() Provider {
	return &viperProvider{v: viper.New()}
}

// NewConfigProvider creates a provider and loads configuration immediately.
// A missing configuration file is not an error.
func NewConfigProvider() (Provider, error) {
	p := NewDefaultConfigProvider()
	if _, err := p.InitConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *viperProvider) SetConfig(c *Settings) {
	p.cfg = c
}

func (p *viperProvider) GetConfig() *Settings {
	if p.cfg == nil {
		p.cfg = DefaultSettings()
	}
	return p.cfg
}

func (p *viperProvider) SetConfigFilePath(path string) {
	p.v.SetConfigFile(path)
}

func (p *viperProvider) ConfigFileUsed() string {
	return p.v.ConfigFileUsed()
}

func (p *viperProvider) InitConfig() (*Settings, error) {
	cfg := DefaultSettings()

	p.v.SetDefault("serviceRoot", DefaultServiceRoot)
	p.v.SetDefault("unitDir", DefaultUnitDir)
	p.v.SetDefault("templateDir", "")
	p.v.SetDefault("runtime", DefaultRuntime)
	p.v.SetDefault("runtimeSocket", "")
	p.v.SetDefault("monitorSchedule", DefaultMonitorSchedule)
	p.v.SetDefault("binaryPath", "")
	p.v.SetDefault("metricsDir", "")
	p.v.SetDefault("userMode", DefaultUserMode)
	p.v.SetDefault("verbose", DefaultVerbose)

	p.v.SetConfigName("config")
	p.v.SetConfigType("yaml")
	p.v.AddConfigPath(os.ExpandEnv("$HOME/.config/portinus"))
	p.v.AddConfigPath("/etc/portinus")
	p.v.AddConfigPath(".")

	p.v.SetEnvPrefix("portinus")
	p.v.AutomaticEnv()

	if err := p.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewConfigurationError(p.v.ConfigFileUsed(), err)
		}
	}

	if err := p.v.Unmarshal(cfg); err != nil {
		return nil, NewConfigurationError("config", err)
	}

	p.cfg = cfg
	return cfg, nil
}
