// Package doctor checks a loaded pmlaunch configuration for launches that
// would predictably fail or misbehave.
package doctor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mattjoyce/pmlaunch/internal/config"
	"github.com/mattjoyce/pmlaunch/internal/lock"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a configuration that already passed config.Validate.
type Doctor struct {
	cfg *config.Config
}

// New creates a Doctor for cfg.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateLaunchTarget(r)
	d.validateDependencies(r)
	d.validatePaths(r)
	d.warnUnknownFlagBits(r)
	d.warnFrameInterval(r)
	d.warnMissingEnvVars(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) installed() map[protocol.ProgramInfo]config.TitleConfig {
	out := make(map[protocol.ProgramInfo]config.TitleConfig, len(d.cfg.Sim.Titles))
	for _, t := range d.cfg.Sim.Titles {
		if p, err := t.Program(); err == nil {
			out[p] = t
		}
	}
	return out
}

// validateLaunchTarget warns when the process manager will refuse the title.
func (d *Doctor) validateLaunchTarget(r *Result) {
	target, err := d.cfg.Program()
	if err != nil {
		d.addError(r, "launch", "launch", err.Error())
		return
	}

	title, ok := d.installed()[target]
	if !ok {
		d.addWarning(r, "launch", "launch.program_id",
			fmt.Sprintf("%s is not in sim.titles; the launch will report not-found", target))
		return
	}
	if title.Denied {
		d.addWarning(r, "launch", "launch.program_id",
			fmt.Sprintf("%s (%s) is denied; the launch will report not-authorized", target, title.Name))
	}
}

// validateDependencies checks dependency declarations against the flags.
func (d *Doctor) validateDependencies(r *Result) {
	flags, err := d.cfg.LaunchFlags()
	if err != nil {
		d.addError(r, "launch", "launch.flags", err.Error())
		return
	}
	installed := d.installed()

	for i, t := range d.cfg.Sim.Titles {
		for j, dep := range t.Dependencies {
			p := protocol.ProgramInfo{ProgramID: uint64(dep), MediaType: protocol.MediaTypeNAND}
			if _, ok := installed[p]; !ok {
				d.addWarning(r, "dependencies", fmt.Sprintf("sim.titles[%d].dependencies[%d]", i, j),
					fmt.Sprintf("%s depends on %s, which is not installed on nand", t.Name, dep))
			}
		}
	}

	target, _ := d.cfg.Program()
	if title, ok := installed[target]; ok && len(title.Dependencies) > 0 && !flags.Has(protocol.LaunchLoadDependencies) {
		d.addWarning(r, "dependencies", "launch.flags",
			fmt.Sprintf("%s declares %d dependencies but load_dependencies is not set", title.Name, len(title.Dependencies)))
	}
}

// validatePaths checks that file destinations can be created.
func (d *Doctor) validatePaths(r *Result) {
	if p := d.cfg.Service.LogFile; p != "" {
		if _, err := os.Stat(filepath.Dir(p)); err != nil {
			d.addError(r, "paths", "service.log_file", fmt.Sprintf("log directory %s does not exist", filepath.Dir(p)))
		}
	}
	if p := d.cfg.Host.LockPath; p != "" && !filepath.IsAbs(p) {
		d.addWarning(r, "paths", "host.lock_path",
			fmt.Sprintf("relative lock path %q depends on the working directory", p))
	}
	if p := d.cfg.Host.LockPath; p != "" {
		if err := lock.CheckPath(p); errors.Is(err, lock.ErrNetworkFilesystem) {
			d.addError(r, "paths", "host.lock_path", err.Error())
		} else if err != nil {
			d.addWarning(r, "paths", "host.lock_path", err.Error())
		}
	}
}

// warnUnknownFlagBits flags hex flag values with no known meaning.
func (d *Doctor) warnUnknownFlagBits(r *Result) {
	flags, err := d.cfg.LaunchFlags()
	if err != nil {
		return
	}
	if rest := flags &^ protocol.LaunchLoadDependencies; rest != 0 {
		d.addWarning(r, "launch", "launch.flags",
			fmt.Sprintf("flag bits 0x%x have no known meaning and are sent as-is", uint32(rest)))
	}
}

// warnFrameInterval warns about intervals far from a display refresh.
func (d *Doctor) warnFrameInterval(r *Result) {
	iv := d.cfg.Host.FrameInterval
	if iv < time.Millisecond {
		d.addWarning(r, "host", "host.frame_interval",
			fmt.Sprintf("frame interval %s is very short (< 1ms)", iv))
	}
	if iv > time.Second {
		d.addWarning(r, "host", "host.frame_interval",
			fmt.Sprintf("frame interval %s is very long (> 1s); input will feel unresponsive", iv))
	}
}

// warnMissingEnvVars warns about ${VAR} references left after interpolation.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	envVarRe := regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

	fields := map[string]string{
		"service.log_file": d.cfg.Service.LogFile,
		"host.lock_path":   d.cfg.Host.LockPath,
	}
	for field, value := range fields {
		for _, m := range envVarRe.FindAllStringSubmatch(value, -1) {
			d.addWarning(r, "env_vars", field, fmt.Sprintf("environment variable ${%s} not set", m[1]))
		}
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Validation: all checks passed\n")
		return b.String()
	}

	if r.Valid {
		fmt.Fprintf(&b, "Validation: passed with %d warning(s)\n", len(r.Warnings))
	} else {
		fmt.Fprintf(&b, "Validation: failed (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
