package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/pmlaunch/internal/hid"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/svc"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// RequireLockEnv names the environment variable that forces the checksum
// check regardless of host.require_lock.
const RequireLockEnv = "PMLAUNCH_REQUIRE_LOCK"

// Load reads a YAML config file over Defaults, verifies it against the
// .checksums manifest in its directory and validates the result. A
// directory path is resolved to config.yaml inside it.
func Load(configPath string) (*Config, error) {
	return LoadRequired(configPath, false)
}

// LoadRequired is Load with the checksum check forced on when requireLock is
// set. The check is also forced when RequireLockEnv is true.
func LoadRequired(configPath string, requireLock bool) (*Config, error) {
	envRequired, err := requireLockFromEnv()
	if err != nil {
		return nil, err
	}

	absPath, err := resolvePath(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	required := requireLock || envRequired || cfg.Host.RequireLock
	if err := verifyConfigHash(absPath, required); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func requireLockFromEnv() (bool, error) {
	v := strings.TrimSpace(os.Getenv(RequireLockEnv))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q: %w", RequireLockEnv, v, err)
	}
	return b, nil
}

// Parse decodes YAML over Defaults after ${VAR} interpolation. It does not
// validate.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	interpolated := interpolateEnv(string(data))

	dec := yaml.NewDecoder(strings.NewReader(interpolated))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

func resolvePath(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return "", fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}
	return absPath, nil
}

// interpolateEnv replaces ${VAR} with the environment value. Unset
// variables are left in place so validation can report them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// Validate checks every field that the launcher resolves at startup.
func (c *Config) Validate() error {
	if err := svc.ValidateServiceName(c.Service.Name); err != nil {
		return fmt.Errorf("service.name: %w", err)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", c.Service.LogLevel)
	}

	if _, err := c.Program(); err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	if _, err := c.LaunchFlags(); err != nil {
		return fmt.Errorf("launch.flags: %w", err)
	}

	if _, err := c.ExitButtons(); err != nil {
		return fmt.Errorf("host.exit_button: %w", err)
	}
	if c.Host.FrameInterval <= 0 {
		return fmt.Errorf("host.frame_interval must be positive")
	}

	seen := make(map[protocol.ProgramInfo]string)
	for i, t := range c.Sim.Titles {
		p, err := t.Program()
		if err != nil {
			return fmt.Errorf("sim.titles[%d]: %w", i, err)
		}
		if prev, dup := seen[p]; dup {
			return fmt.Errorf("sim.titles[%d]: %s already installed as %q", i, p, prev)
		}
		seen[p] = t.Name
	}

	return nil
}

// Program resolves the launch target.
func (c *Config) Program() (protocol.ProgramInfo, error) {
	mt, err := protocol.ParseMediaType(c.Launch.MediaType)
	if err != nil {
		return protocol.ProgramInfo{}, err
	}
	return protocol.ProgramInfo{ProgramID: uint64(c.Launch.ProgramID), MediaType: mt}, nil
}

// LaunchFlags resolves the configured flag names.
func (c *Config) LaunchFlags() (protocol.LaunchFlags, error) {
	return protocol.ParseLaunchFlags(c.Launch.Flags)
}

// ExitButtons resolves the button combination that ends the host loop.
func (c *Config) ExitButtons() (hid.Buttons, error) {
	return hid.ParseButtons(c.Host.ExitButton)
}

// Program resolves the title's descriptor.
func (t TitleConfig) Program() (protocol.ProgramInfo, error) {
	mt, err := protocol.ParseMediaType(t.MediaType)
	if err != nil {
		return protocol.ProgramInfo{}, err
	}
	return protocol.ProgramInfo{ProgramID: uint64(t.ProgramID), MediaType: mt}, nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
