package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()

	// Custom usage message
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `stacklume - desktop launcher for the bundled Stacklume server

Usage:
  stacklume [flags]

Resource Flags:
`)
		printFlagCategory(fs, []string{"resources", "data-dir", "runtime", "entry"})

		fmt.Fprintf(os.Stderr, "\nHealth Gating:\n")
		printFlagCategory(fs, []string{"health-interval", "health-attempts"})

		fmt.Fprintf(os.Stderr, "\nTeardown:\n")
		printFlagCategory(fs, []string{"stop-timeout"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory(fs, []string{"metrics", "v", "log-format"})

		fmt.Fprintf(os.Stderr, "\nSurfaces:\n")
		printFlagCategory(fs, []string{"tui", "history"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Launch with the bundle next to the binary
  stacklume

  # Headless launch with metrics, for supervised deployments
  stacklume -tui=false -metrics 127.0.0.1:9090

  # Development: point at a checked-out server
  stacklume -runtime /usr/bin/node -entry ./server/server.js

`)
	}

	// Resources
	fs.StringVar(&cfg.ResourceDir, "resources", cfg.ResourceDir, "Directory holding the bundled runtime and server")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Per-user data directory (database, logs)")
	fs.StringVar(&cfg.RuntimeOverride, "runtime", cfg.RuntimeOverride, "Use this runtime binary instead of the bundled one")
	fs.StringVar(&cfg.EntryOverride, "entry", cfg.EntryOverride, "Use this entry script instead of the bundled one")

	// Health gating
	fs.DurationVar(&cfg.HealthInterval, "health-interval", cfg.HealthInterval, "Delay between health probes")
	fs.IntVar(&cfg.HealthAttempts, "health-attempts", cfg.HealthAttempts, "Health probes before giving up")

	// Teardown
	fs.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "Grace period between SIGTERM and SIGKILL")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	// Surfaces
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable the terminal surface (use -tui=false for headless)")
	fs.BoolVar(&cfg.HistoryEnabled, "history", cfg.HistoryEnabled, "Record launch sessions to the local registry")

	// Diagnostic modes
	fs.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}
	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}
	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}
	return "string"
}
