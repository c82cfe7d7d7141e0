package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the typed view of merged and expanded Values.
type Config struct {
	Image           string   `yaml:"image"`
	MountPath       string   `yaml:"mount_path"`
	Shell           string   `yaml:"shell"`
	ShellArgs       []string `yaml:"shell_args"`
	StopGracePeriod int      `yaml:"stop_grace_period"`
	EtcHosts        []string `yaml:"etc_hosts"`
	Volumes         []string `yaml:"volumes,omitempty"`
	ShmSize         string   `yaml:"shm_size,omitempty"`

	// Extra holds keys kplay does not know about.
	Extra map[string]any `yaml:",inline"`
}

// Decode converts v into a Config and validates it. The source is used only
// for error messages.
func (v Values) Decode(source string) (*Config, error) {
	data, err := v.Marshal()
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, source, err)
	}
	if err := c.Validate(source); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks c and returns every problem found in a single error.
func (c *Config) Validate(source string) error {
	var errs []string

	if strings.TrimSpace(c.Image) == "" {
		errs = append(errs, "image must not be empty")
	}
	if strings.TrimSpace(c.MountPath) == "" {
		errs = append(errs, "mount_path must not be empty")
	}
	if strings.TrimSpace(c.Shell) == "" {
		errs = append(errs, "shell must not be empty")
	}
	if c.StopGracePeriod < 0 {
		errs = append(errs, fmt.Sprintf("stop_grace_period must not be negative, got %d", c.StopGracePeriod))
	}
	for i, line := range c.EtcHosts {
		if strings.TrimSpace(line) == "" {
			errs = append(errs, fmt.Sprintf("etc_hosts[%d]: expected \"<ip> <alias1> [<alias2> ...]\", got an empty line", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s:\n  - %s", ErrParse, source, strings.Join(errs, "\n  - "))
	}
	return nil
}
