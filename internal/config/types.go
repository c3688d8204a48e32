package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete pmlaunch configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Launch  LaunchConfig  `yaml:"launch"`
	Host    HostConfig    `yaml:"host"`
	Sim     SimConfig     `yaml:"sim"`
}

// ServiceConfig names the privileged service and sets process logging.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"` // empty: stdout when headless, discarded under the TUI
}

// LaunchConfig describes the one title the launcher starts.
type LaunchConfig struct {
	ProgramID ProgramID `yaml:"program_id"`
	MediaType string    `yaml:"media_type"`
	Flags     []string  `yaml:"flags"`
}

// HostConfig controls the frame loop around the launch.
type HostConfig struct {
	ExitButton    string        `yaml:"exit_button"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	LockPath      string        `yaml:"lock_path,omitempty"`
	// RequireLock refuses to start without a matching .checksums. It is read
	// from the file it protects, so it only guards against accidental edits;
	// launch --require-lock or PMLAUNCH_REQUIRE_LOCK enforce it from outside.
	RequireLock bool `yaml:"require_lock"`
}

// SimConfig is the title catalog of the in-process microkernel.
type SimConfig struct {
	Titles []TitleConfig `yaml:"titles"`
}

// TitleConfig is one installed title.
type TitleConfig struct {
	Name         string      `yaml:"name"`
	ProgramID    ProgramID   `yaml:"program_id"`
	MediaType    string      `yaml:"media_type"`
	Dependencies []ProgramID `yaml:"dependencies,omitempty"`
	Denied       bool        `yaml:"denied,omitempty"`
}

// ProgramID is a 64-bit title id written in YAML as a hex string
// ("0x0004013000CB9702") or a plain integer.
type ProgramID uint64

func (p ProgramID) String() string {
	return fmt.Sprintf("0x%016X", uint64(p))
}

// ParseProgramID accepts "0x"-prefixed hex or decimal.
func ParseProgramID(s string) (ProgramID, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid program id %q: %w", s, err)
	}
	return ProgramID(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ProgramID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: program id must be a scalar", value.Line)
	}
	v, err := ParseProgramID(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p ProgramID) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// Default program ids used by Defaults.
const (
	DefaultProgramID ProgramID = 0x0004013000CB9702
	socketProgramID  ProgramID = 0x0004013000002E02
)

// Defaults returns the deployment configuration: steal pm:app and launch
// the fixed system module from NAND with its dependencies.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "pm:app",
			LogLevel: "info",
		},
		Launch: LaunchConfig{
			ProgramID: DefaultProgramID,
			MediaType: "nand",
			Flags:     []string{"load_dependencies"},
		},
		Host: HostConfig{
			ExitButton:    "start",
			FrameInterval: time.Second / 60,
		},
		Sim: SimConfig{
			Titles: []TitleConfig{
				{Name: "pnp", ProgramID: DefaultProgramID, MediaType: "nand", Dependencies: []ProgramID{socketProgramID}},
				{Name: "socket", ProgramID: socketProgramID, MediaType: "nand"},
			},
		},
	}
}
