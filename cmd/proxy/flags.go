package main

import (
	"flag"
	"fmt"
	"os"
)

func newFlagSet(cfg *CLIConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	fs.StringVar(&cfg.ConfigPath, "config", getEnv("PROXY_CONFIG", ""),
		"Path to a YAML config file overriding ambient defaults (env: PROXY_CONFIG)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("PROXY_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: PROXY_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("PROXY_LOG_FORMAT", "json"),
		"Log format: json, text (env: PROXY_LOG_FORMAT)")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", getEnvInt("PROXY_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: PROXY_METRICS_PORT)")
	fs.IntVar(&cfg.HealthPort, "health-port", getEnvInt("PROXY_HEALTH_PORT", 0),
		"Health check port, 0 to disable (env: PROXY_HEALTH_PORT)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	return fs
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}

// CLIConfig holds the ambient options; everything after them on the
// command line is the ordered list of stage tokens that describe the
// pipeline itself (e.g. "-" "+lines" "file:/tmp/out"). Decoder tokens
// such as "-lines" or "-url" begin with a single dash just like a flag,
// so any pipeline using one must separate ambient options from stage
// tokens with a literal "--": stdlib flag stops parsing at "--" and
// hands everything after it to fs.Args() untouched, so "-lines" is
// never mistaken for an unknown flag.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	MetricsPort int
	HealthPort  int
	ShowVersion bool
	ShowHelp    bool
	Stages      []string
}

func parseFlags(args []string) *CLIConfig {
	cfg := &CLIConfig{}
	fs := newFlagSet(cfg)
	_ = fs.Parse(args)
	cfg.Stages = fs.Args()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}
	if len(cfg.Stages) < 2 {
		return fmt.Errorf("at least two stage tokens are required (a source and a sink)")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	if cfg.HealthPort < 0 || cfg.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", cfg.HealthPort)
	}
	return nil
}

func printHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - configurable message proxy

Usage: %s [options] [--] <stage> <stage> [stage...]

Each stage is a transport or codec token, e.g.:
  -                 stdin/stdout
  file:/tmp/in      read/append a file
  +lines / -lines   frame or split on newline
  +length / -length prepend or consume a 4-byte length header

A "--" is required before any stage token starting with a single dash
(decoders: -lines, -delim, -url, -n, -length), so it is never mistaken
for an unrecognized option.

Options:
`, appName, os.Args[0])
	newFlagSet(&CLIConfig{}).PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  %s - +lines file:/tmp/out
  %s --log-level=debug -- file:/tmp/in -lines -

Version: %s
`, os.Args[0], os.Args[0], Version)
}
