package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
)

func printEncodeHelp() {
	fmt.Println("Usage: pmlaunch encode [--config PATH] [--bytes]")
	fmt.Println("Build the configured launch-title request and print its words.")
	fmt.Println("Nothing is sent.")
}

func printResultHelp() {
	fmt.Println("Usage: pmlaunch result [--json] <code>")
	fmt.Println("Split a result code (0xD8E007F7, d8e007f7 or -656406537) into")
	fmt.Println("level, summary, module and description.")
}

func runEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to configuration file or directory")
	asBytes := fs.Bool("bytes", false, "Print the little-endian byte image instead of words")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}
	program, _ := cfg.Program()
	flags, _ := cfg.LaunchFlags()

	buf, err := protocol.NewLaunchTitleRequest(program, flags).Encode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
		return exitUsage
	}

	if *asBytes {
		fmt.Println(hex.EncodeToString(buf.Bytes()))
		return exitOK
	}

	fmt.Printf("program %s flags %s\n", program, flags)
	for i, w := range buf.Used() {
		var note string
		switch {
		case i == 0:
			note = buf.Header().String()
		case i <= protocol.ProgramInfoWords:
			note = "program info"
		default:
			note = "flags"
		}
		fmt.Printf("word[%d] 0x%08x  %s\n", i, w, note)
	}
	return exitOK
}

type resultInfo struct {
	Code        string `json:"code"`
	Success     bool   `json:"success"`
	Level       string `json:"level"`
	Summary     string `json:"summary"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

func runResult(args []string) int {
	fs := flag.NewFlagSet("result", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pmlaunch result [--json] <code>")
		return exitUsage
	}

	code, err := result.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	info := resultInfo{
		Code:        "0x" + code.Hex(),
		Success:     code.IsSuccess(),
		Level:       code.Level().String(),
		Summary:     code.Summary().String(),
		Module:      code.Module().String(),
		Description: code.Description().String(),
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))
		return exitOK
	}

	fmt.Printf("code:        %s\n", info.Code)
	fmt.Printf("success:     %t\n", info.Success)
	fmt.Printf("level:       %s\n", info.Level)
	fmt.Printf("summary:     %s\n", info.Summary)
	fmt.Printf("module:      %s\n", info.Module)
	fmt.Printf("description: %s\n", info.Description)
	return exitOK
}
