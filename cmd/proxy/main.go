// Package main implements the entry point for proxy, a configurable
// message proxy: a linear pipeline of transport and codec stages
// described entirely by command-line tokens.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mjwatson/stream-proxy/internal/builtins"
	"github.com/mjwatson/stream-proxy/internal/config"
	"github.com/mjwatson/stream-proxy/internal/engine"
	"github.com/mjwatson/stream-proxy/internal/health"
	"github.com/mjwatson/stream-proxy/internal/metric"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/specparse"
)

const (
	Version = "0.1.0"
	appName = "proxy"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("proxy failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg := parseFlags(args)

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		printHelp()
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ConfigPath != "" {
		fileCfg, err := config.Load(cliCfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFileConfig(cliCfg, fileCfg, args)
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("starting proxy", "version", Version, "stages", cliCfg.Stages)

	reg := registry.New()
	if err := builtins.Register(reg); err != nil {
		return fmt.Errorf("register stages: %w", err)
	}

	tokens, err := specparse.Parse(cliCfg.Stages)
	if err != nil {
		return fmt.Errorf("parse pipeline: %w", err)
	}
	pl, err := specparse.Build(tokens, reg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() {
		if cerr := pl.Close(); cerr != nil {
			logger.Warn("error closing pipeline stages", "error", cerr)
		}
	}()

	metrics, err := metric.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	monitor := health.NewMonitor()
	stopMetrics := startAmbientServers(logger, cliCfg.MetricsPort, cliCfg.HealthPort, monitor)
	defer stopMetrics()

	monitor.MarkRunning()
	defer monitor.MarkStopped()

	eng := engine.New(logger, metrics)
	if err := eng.Run(pl); err != nil {
		return err
	}
	logger.Info("proxy finished")
	return nil
}

func applyFileConfig(cli *CLIConfig, file *config.File, args []string) {
	explicit := make(map[string]bool)
	fs := newFlagSet(&CLIConfig{})
	_ = fs.Parse(args)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if file.LogLevel != "" && !explicit["log-level"] {
		cli.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" && !explicit["log-format"] {
		cli.LogFormat = file.LogFormat
	}
	if file.MetricsPort != 0 && !explicit["metrics-port"] {
		cli.MetricsPort = file.MetricsPort
	}
	if file.HealthPort != 0 && !explicit["health-port"] {
		cli.HealthPort = file.HealthPort
	}
}

func startAmbientServers(logger *slog.Logger, metricsPort, healthPort int, monitor *health.Monitor) func() {
	var servers []*http.Server

	if metricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", metricsPort), Handler: mux}
		servers = append(servers, srv)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}
	if healthPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/healthz", monitor.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", healthPort), Handler: mux}
		servers = append(servers, srv)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("health server stopped", "error", err)
			}
		}()
	}

	return func() {
		for _, s := range servers {
			_ = s.Close()
		}
	}
}
