package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/citrus/internal/cache"
	"github.com/hpungsan/citrus/internal/config"
	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/mcp"
	"github.com/hpungsan/citrus/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"search": true, "ean": true, "estimate": true,
	"log": true, "relog": true, "day": true, "delete": true,
	"goals": true, "suggest": true, "serve": true,
	"help": true,
}

// commandArg returns the first argument that is not a global flag.
func commandArg() string {
	for _, a := range os.Args[1:] {
		if a == "--verbose" || a == "--verbose=true" {
			continue
		}
		return a
	}
	return ""
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	arg := commandArg()
	if arg == "" {
		return false // No args → MCP server
	}
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	arg := commandArg()
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// hasVerboseFlag reports whether --verbose appears anywhere in the arguments.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
        _ _
   ___ (_) |_ _ __ _   _ ___
  / __|| | __| '__| | | / __|
 | (__ | | |_| |  | |_| \__ \
  \___||_|\__|_|   \__,_|___/

  Food log and nutrient suggestions

  Usage: citrus <command> [options]
         citrus --help

  MCP server mode requires piped input.`)
}

// errorf prints an error to stderr and returns the failing exit code.
func errorf(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return 1
}

func main() {
	os.Exit(run())
}

// run dispatches to the banner, the CLI or the MCP server and returns the
// process exit code. Returning instead of exiting lets deferred closes run.
func run() int {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			return errorf("%v", err)
		}
		return 0
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return errorf("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".citrus")

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return errorf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return errorf("invalid config: %v", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if hasVerboseFlag(os.Args) {
		level = logger.LevelVerbose
	}
	log := logger.New(level, os.Stderr)

	database, err := db.Init(baseDir)
	if err != nil {
		return errorf("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	var lookupCache *cache.Cache
	if !cfg.CacheDisabled {
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		lookupCache = cache.OpenOrDisable(baseDir, ttl, log)
		defer lookupCache.Close()
	}

	svc, err := ops.NewService(cfg, lookupCache, log)
	if err != nil {
		return errorf("%v", err)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, svc, log)
		if err := app.Run(os.Args); err != nil {
			return errorf("%v", err)
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if arg := commandArg(); arg != "" && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", arg)
		fmt.Fprintf(os.Stderr, "Run 'citrus --help' for usage.\n")
		return 1
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools: %v", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("unknown types in disabled_types: %v", unknown)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, svc, cfg, Version); err != nil {
		return errorf("%v", err)
	}
	return 0
}
