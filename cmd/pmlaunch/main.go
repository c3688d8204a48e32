package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/mattjoyce/pmlaunch/internal/config"
	"github.com/mattjoyce/pmlaunch/internal/host"
	"github.com/mattjoyce/pmlaunch/internal/lock"
	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/sim"
	"github.com/mattjoyce/pmlaunch/internal/tui"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK            = 0
	exitUsage         = 1
	exitLaunchFailure = 2
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage(os.Stderr)
		return exitUsage
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "launch":
		if hasHelpFlag(args) {
			printLaunchHelp()
			return exitOK
		}
		return runLaunch(args)
	case "encode":
		if hasHelpFlag(args) {
			printEncodeHelp()
			return exitOK
		}
		return runEncode(args)
	case "result":
		if hasHelpFlag(args) {
			printResultHelp()
			return exitOK
		}
		return runResult(args)
	case "config":
		return runConfigNoun(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pmlaunch - Launch a title through the process manager

Usage:
  pmlaunch <command> [flags]

Commands:
  launch            Steal the pm:app session, launch the title, run the console
  encode            Print the launch request words without sending them
  result <code>     Decode a result code into its fields
  config check      Validate configuration and integrity
  config lock       Record the config hash in .checksums
  config show       Print the effective configuration
  version           Show version information
  help              Show this help message

Exit codes:
  0  Success (or launch finished without --once)
  1  Usage, configuration or startup error
  2  Launch failed (launch --once only)

Use 'pmlaunch <command> --help' for command flags.
`)
}

func printLaunchHelp() {
	fmt.Println("Usage: pmlaunch launch [--config PATH] [--headless] [--once] [--require-lock]")
	fmt.Println("Steal the configured service session, send one launch-title request and")
	fmt.Println("report the result, then run the frame loop until the exit button.")
	fmt.Println("")
	fmt.Println("  --headless  Line-mode console (default when stdin is not a terminal)")
	fmt.Println("  --once      Report and exit without a frame loop; exit 2 on failure")
	fmt.Println("  --require-lock  Refuse a config without a matching .checksums")
	fmt.Println("                  (also PMLAUNCH_REQUIRE_LOCK=true)")
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// loadConfig reads the file at path, or returns Defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	return config.Load(path)
}

func defaultConfigPath() string {
	return os.Getenv("PMLAUNCH_CONFIG")
}

func runLaunch(args []string) int {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to configuration file or directory")
	headless := fs.Bool("headless", false, "Use the line-mode console")
	once := fs.Bool("once", false, "Report the launch and exit without a frame loop")
	requireLock := fs.Bool("require-lock", false, "Refuse a config without a matching .checksums")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	var cfg *config.Config
	var err error
	if *requireLock {
		if *configPath == "" {
			fmt.Fprintln(os.Stderr, "Error: --require-lock needs --config (or PMLAUNCH_CONFIG)")
			return exitUsage
		}
		cfg, err = config.LoadRequired(*configPath, true)
	} else {
		cfg, err = loadConfig(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}

	interactive := !*once && !*headless && term.IsTerminal(int(os.Stdin.Fd()))

	logOut, closeLog, err := openLogOutput(cfg.Service.LogFile, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return exitUsage
	}
	defer closeLog()
	log.SetupWriter(logOut, cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("pmlaunch starting", "version", version, "config", *configPath, "service", cfg.Service.Name)

	// Validated by config.Load.
	program, _ := cfg.Program()
	flags, _ := cfg.LaunchFlags()
	exit, _ := cfg.ExitButtons()

	kernel, err := bootKernel(cfg)
	if err != nil {
		logger.Error("failed to boot kernel", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to boot kernel: %v\n", err)
		return exitUsage
	}

	lockPath := cfg.Host.LockPath
	if lockPath == "" {
		lockPath = lock.DefaultPath()
	}

	var fe host.Frontend
	switch {
	case *once:
		fe = &host.Once{Out: os.Stdout}
	case interactive:
		fe = &tui.Console{Exit: exit, Frame: cfg.Host.FrameInterval}
	default:
		fe = &host.Headless{In: os.Stdin, Out: os.Stdout, Exit: exit, Frame: cfg.Host.FrameInterval}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := host.Run(ctx, kernel, host.Options{
		Service:  cfg.Service.Name,
		Program:  program,
		Flags:    flags,
		LockPath: lockPath,
	}, fe)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, tui.ErrAborted):
		logger.Info("interrupted", "reason", err.Error())
	default:
		logger.Error("launcher failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger.Info("pmlaunch stopped", "result", report.Outcome.Code.Hex(), "request_id", report.RequestID)
	if *once && report.Outcome.Code.IsFailure() {
		return exitLaunchFailure
	}
	return exitOK
}

// openLogOutput picks the log destination. The interactive console owns the
// terminal, so without a log file its logs are dropped.
func openLogOutput(path string, interactive bool) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	if interactive {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

// bootKernel starts the in-process kernel with the configured title catalog
// and the service session the launcher steals.
func bootKernel(cfg *config.Config) (*sim.Kernel, error) {
	titles := make([]sim.Title, 0, len(cfg.Sim.Titles))
	for i, tc := range cfg.Sim.Titles {
		p, err := tc.Program()
		if err != nil {
			return nil, fmt.Errorf("sim.titles[%d]: %w", i, err)
		}
		deps := make([]uint64, len(tc.Dependencies))
		for j, d := range tc.Dependencies {
			deps[j] = uint64(d)
		}
		titles = append(titles, sim.Title{Program: p, Name: tc.Name, Dependencies: deps, Denied: tc.Denied})
	}

	k, _, err := sim.Boot(cfg.Service.Name, titles...)
	return k, err
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: pmlaunch version [--json]")
		return exitUsage
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return exitUsage
		}
		fmt.Println(string(data))
		return exitOK
	}

	fmt.Printf("pmlaunch %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return exitOK
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = readBuildSetting("vcs.revision")
	}
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		info.Commit = commit
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = readBuildSetting("vcs.time")
	}
	if t, err := time.Parse(time.RFC3339Nano, built); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}

	return info
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return strings.TrimSpace(setting.Value)
		}
	}
	return ""
}
