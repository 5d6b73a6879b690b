// SPDX-License-Identifier: MIT
package client

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Build info, set by cmd/metaseek's main.go via -ldflags.
var (
	Version   = "dev"
	CommitID  = "unknown"
	BuildDate = "unknown"
)

const binaryName = "metaseek"

// CLIConfig holds the client's own configuration, loaded from
// ~/.config/apimgr/metaseek/cli.yml and overridable by flags and
// environment variables.
type CLIConfig struct {
	Server struct {
		Address string `yaml:"address"`
		Timeout int    `yaml:"timeout"`
	} `yaml:"server"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
}

var (
	cfgFile    string
	serverAddr string
	outputFmt  string
	timeoutSec int
	tuiMode    bool

	cfg       CLIConfig
	apiClient *Client
)

// Execute is the CLI entrypoint: cmd/metaseek's main calls this with
// os.Args[1:].
func Execute(args []string) error {
	if len(args) == 0 {
		printHelp()
		return nil
	}

	args = parseGlobalFlags(args)
	loadConfig()
	apiClient = New(cfg.Server.Address, time.Duration(cfg.Server.Timeout)*time.Second)
	apiClient.SetUserAgent(Version)

	if len(args) == 0 {
		if tuiMode {
			return RunInteractiveTUI()
		}
		printHelp()
		return nil
	}

	switch args[0] {
	case "help", "-h", "--help":
		printHelp()
	case "version", "-v", "--version":
		printVersion()
	case "search":
		return runSearch(args[1:])
	case "tui":
		return RunInteractiveTUI()
	default:
		return runSearch(args)
	}
	return nil
}

func parseGlobalFlags(args []string) []string {
	var remaining []string
	i := 0
	for i < len(args) {
		switch args[i] {
		case "-s", "--server":
			if i+1 < len(args) {
				serverAddr = args[i+1]
				i += 2
			} else {
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				outputFmt = args[i+1]
				i += 2
			} else {
				i++
			}
		case "-c", "--config":
			if i+1 < len(args) {
				cfgFile = args[i+1]
				i += 2
			} else {
				i++
			}
		case "--timeout":
			if i+1 < len(args) {
				fmt.Sscanf(args[i+1], "%d", &timeoutSec)
				i += 2
			} else {
				i++
			}
		case "--tui":
			tuiMode = true
			i++
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--version":
			printVersion()
			os.Exit(0)
		default:
			remaining = append(remaining, args[i])
			i++
		}
	}
	return remaining
}

func loadConfig() {
	cfg.Server.Address = "http://localhost:8080"
	cfg.Server.Timeout = 30
	cfg.Output.Format = "table"

	if cfgFile == "" {
		cfgFile = ConfigFile()
	}
	if data, err := os.ReadFile(cfgFile); err == nil {
		_ = yaml.Unmarshal(data, &cfg)
	}

	if serverAddr != "" {
		cfg.Server.Address = serverAddr
	}
	if outputFmt != "" {
		cfg.Output.Format = outputFmt
	}
	if timeoutSec > 0 {
		cfg.Server.Timeout = timeoutSec
	}

	if env := os.Getenv("METASEEK_SERVER"); env != "" && serverAddr == "" {
		cfg.Server.Address = env
	}
}

func printHelp() {
	fmt.Printf(`%s v%s - CLI client for metaseek

Usage:
  %s [command] [flags]
  %s <query>              Search (shortcut)

Commands:
  search <query>    Search and print results
  tui               Launch the interactive results browser
  version           Show version information
  help              Show this help

Flags:
  -s, --server string   Server address (default: http://localhost:8080)
  -o, --output string   Output format: json, table, plain (default: table)
  -c, --config string   Path to config file
      --timeout int     Request timeout in seconds (default: 30)
      --tui             Launch TUI mode
  -h, --help            Show help
  -v, --version         Show version

Examples:
  %s "privacy respecting search"
  %s search --engines duckduckgo,brave "query"
  %s --output json "query"
  %s tui
`, binaryName, Version, binaryName, binaryName, binaryName, binaryName, binaryName, binaryName)
}

func printVersion() {
	fmt.Printf("%s v%s (%s) built %s\n", binaryName, Version, CommitID, BuildDate)
}
