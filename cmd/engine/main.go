// Package main is the entry point for the funding-rate execution engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	executionApp "github.com/fd1az/funding-engine/business/execution/app"
	executionDomain "github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/business/execution/infra/report"
	"github.com/fd1az/funding-engine/business/execution/infra/tcp"
	"github.com/fd1az/funding-engine/business/execution/infra/ws"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
	ratesInfra "github.com/fd1az/funding-engine/business/rates/infra"
	"github.com/fd1az/funding-engine/business/rates/infra/synthetic"
	"github.com/fd1az/funding-engine/internal/apm"
	"github.com/fd1az/funding-engine/internal/config"
	"github.com/fd1az/funding-engine/internal/health"
	"github.com/fd1az/funding-engine/internal/logger"
	"github.com/fd1az/funding-engine/internal/metrics"
	"github.com/fd1az/funding-engine/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	tuiFlag := flag.Bool("tui", false, "Run with the terminal dashboard instead of logs")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("funding-engine %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !*tuiFlag {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, cancel, *configPath, *tuiFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger (suppress logs in TUI mode, the terminal belongs to the dashboard)
	var log *logger.Logger
	if tuiMode {
		log = logger.NewNop()
	} else {
		log = logger.New(os.Stderr, logger.Level(cfg.App.LogLevel), cfg.App.Name)
		defer log.Sync()
		log.Info(ctx, "starting funding-rate execution engine",
			"version", version,
			"environment", cfg.App.Environment,
			"exchanges", len(cfg.Exchanges),
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	instruments, err := metrics.NewEngineInstruments()
	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	// Build the exchange registry from config; immutable after this point.
	connectors := make([]ratesDomain.Connector, 0, len(cfg.Exchanges))
	for name, ex := range cfg.Exchanges {
		connectors = append(connectors, ratesDomain.Connector{
			Name:      name,
			BaseURL:   ex.BaseURL,
			APIKey:    ex.APIKey,
			SecretKey: ex.SecretKey,
			MakerFee:  ex.MakerFee,
			TakerFee:  ex.TakerFee,
		})
	}
	registry := ratesDomain.NewRegistry(connectors)

	// Rate source: synthetic feed behind a circuit breaker.
	source := ratesInfra.NewBreakerSource("funding-rates", synthetic.NewSource(registry))

	strategy := executionApp.NewFundingStrategy(executionApp.StrategyConfig{
		RateDiffThreshold:  cfg.Strategy.RateDiffThresholdDecimal(),
		SuccessProbability: cfg.Strategy.SuccessProbability,
		EfficiencyFactor:   cfg.Strategy.EfficiencyFactorDecimal(),
		ExecutionLatency:   cfg.Strategy.ExecutionLatency,
	})

	var reporter executionApp.Reporter
	if tuiMode {
		reporter = report.NewTUIReporter()
	} else {
		reporter = report.NewConsoleReporter()
	}
	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}
	defer reporter.Stop()

	engine := executionApp.NewEngine(
		source,
		strategy,
		executionDomain.GasBudget{
			GasPriceWei: cfg.Gas.GasPriceWei,
			MaxGasLimit: cfg.Gas.MaxGasLimit,
		},
		reporter,
		log,
		instruments,
	)

	tcpServer := tcp.NewServer(tcp.Config{
		ListenAddr:        cfg.Server.ListenAddr,
		MaxFrameBytes:     cfg.Server.MaxFrameBytes,
		RequestTimeout:    cfg.Server.RequestTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	}, engine, reporter, log, instruments)

	if err := tcpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tcp server: %w", err)
	}

	var wsServer *ws.Server
	if cfg.Server.WSEnabled {
		wsServer = ws.NewServer(ws.Config{
			ListenAddr:     cfg.Server.WSListenAddr,
			MaxFrameBytes:  cfg.Server.MaxFrameBytes,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, engine, log, instruments)
		if err := wsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start websocket server: %w", err)
		}
	}

	// Start health check server
	healthServer := health.NewServer(cfg.Server.HealthPort, version)
	healthServer.RegisterCheck("tcp_listener", tcpServer.Ready)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Server.HealthPort)
	}

	shutdown := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if wsServer != nil {
			wsServer.Shutdown(shutdownCtx)
		}
		tcpServer.Shutdown(shutdownCtx)
		healthServer.Stop(shutdownCtx)
	}

	if tuiMode {
		err := runTUI(ctx, cancel)
		shutdown()
		return err
	}

	// CLI mode: run until the context is cancelled.
	<-ctx.Done()
	log.Info(context.Background(), "shutting down")
	shutdown()

	return nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc) error {
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Quit the dashboard when the context is cancelled externally.
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Quitting the dashboard shuts the engine down too.
	cancel()
	return nil
}
