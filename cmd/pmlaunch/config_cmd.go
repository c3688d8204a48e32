package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattjoyce/pmlaunch/internal/config"
	"github.com/mattjoyce/pmlaunch/internal/doctor"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return exitUsage
	}

	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return exitOK
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			fmt.Println("Usage: pmlaunch config check [--config PATH] [--json]")
			fmt.Println("Load, verify and validate the configuration, then check the launch")
			fmt.Println("target against the title catalog.")
			return exitOK
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			fmt.Println("Usage: pmlaunch config lock [--config PATH] [--dry-run]")
			fmt.Println("Authorize the current config by writing its BLAKE3 hash to .checksums.")
			return exitOK
		}
		return runConfigLock(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			fmt.Println("Usage: pmlaunch config show [--config PATH]")
			fmt.Println("Print the effective configuration, defaults included, as YAML.")
			return exitOK
		}
		return runConfigShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return exitUsage
	}
}

func printConfigNounHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: pmlaunch config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock, show")
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output the validation result as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		return exitUsage
	}

	result := doctor.New(cfg).Validate()
	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return exitUsage
		}
		fmt.Println(out)
		if !result.Valid {
			return exitUsage
		}
		return exitOK
	}

	program, _ := cfg.Program()
	flags, _ := cfg.LaunchFlags()
	exit, _ := cfg.ExitButtons()

	integrity := "no config file (defaults)"
	if *configPath != "" {
		integrity = integrityStatus(*configPath)
	}

	fmt.Println("Configuration loaded")
	fmt.Printf("  service:   %s\n", cfg.Service.Name)
	fmt.Printf("  program:   %s\n", program)
	fmt.Printf("  flags:     %s\n", flags)
	fmt.Printf("  exit:      %s\n", exit)
	fmt.Printf("  frame:     %s\n", cfg.Host.FrameInterval)
	fmt.Printf("  titles:    %d\n", len(cfg.Sim.Titles))
	fmt.Printf("  integrity: %s\n", integrity)
	fmt.Print(doctor.FormatHuman(result))
	if !result.Valid {
		return exitUsage
	}
	return exitOK
}

func integrityStatus(configPath string) string {
	path := configPath
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "config.yaml")
	}
	if _, err := config.LoadChecksums(filepath.Dir(path)); err != nil {
		return "unlocked"
	}
	return "locked"
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to configuration file or directory")
	dryRun := fs.Bool("dry-run", false, "Compute the hash without writing .checksums")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --config is required (or set PMLAUNCH_CONFIG)")
		return exitUsage
	}

	path := *configPath
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "config.yaml")
	}

	// Refuse to authorize a config that would not load.
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	cfg, err := config.Parse(data)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid, not locking: %v\n", err)
		return exitUsage
	}

	report, err := config.Lock(path, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return exitUsage
	}

	fmt.Printf("%s  %s\n", report.Hash, filepath.Base(report.ConfigPath))
	if report.Written {
		fmt.Printf("Wrote %s\n", report.ChecksumPath)
	} else {
		fmt.Println("Dry run: .checksums not written")
	}
	return exitOK
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return exitUsage
	}

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render error: %v\n", err)
		return exitUsage
	}
	fmt.Print(string(data))
	return exitOK
}
