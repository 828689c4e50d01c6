package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/netutil"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/telemetry"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/adapter/ws"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/api"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/config"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/feedback"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/metrics"
	prommetrics "github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/metrics/prometheus"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/stats"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/web"
	"github.com/spf13/cobra"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the relay hub",
	Long: `Start the easeTransfer hub with the specified configuration.

By default, the hub runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/easetransfer/config.yaml.

Examples:
  # Start in background (default)
  easetransfer start

  # Start in foreground
  easetransfer start --foreground

  # Start with custom config file
  easetransfer start --config /etc/easetransfer/config.yaml

  # Start with environment variable overrides
  PORT=8080 EASETRANSFER_LOGGING_LEVEL=DEBUG easetransfer start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/easetransfer/easetransfer.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/easetransfer/easetransfer.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "easetransfer",
		ServiceVersion: buildVersion,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "easetransfer",
		ServiceVersion: buildVersion,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	fmt.Println("easeTransfer - LAN file relay hub")
	logger.Info("configuration loaded",
		"source", getConfigSource(GetConfigFile()),
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	}

	// Initialize metrics (if enabled)
	var hubMetrics metrics.HubMetrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		hubMetrics = prommetrics.NewHubMetrics()
		metricsHandler = metrics.Handler()
		logger.Info("metrics enabled", logger.Path(cfg.Metrics.Path))
	} else {
		logger.Info("metrics collection disabled")
	}

	// The session registry is the hub's core state; everything else
	// hangs off it.
	reg := hub.NewRegistry()

	janitor := hub.NewJanitor(reg, hub.JanitorConfig{
		FileTTL:       cfg.Session.FileTTL,
		SweepInterval: cfg.Session.SweepInterval,
		EmptyGrace:    cfg.Session.EmptyGrace,
	}, hubMetrics)

	// Lifetime counters survive restarts; a corrupt file restarts them
	// from zero rather than blocking startup.
	statsStore, err := stats.Load(cfg.Storage.StatsFile)
	if err != nil {
		logger.Warn("stats file unreadable, counters restart from zero",
			logger.Path(cfg.Storage.StatsFile), logger.Err(err))
		statsStore = stats.New(cfg.Storage.StatsFile)
	}

	var feedbackLog *feedback.Log
	if cfg.Storage.FeedbackFile != "" {
		feedbackLog = feedback.NewLog(cfg.Storage.FeedbackFile)
	}

	wsAdapter := ws.NewAdapter(reg, ws.Config{
		MaxFrameSize:    int64(cfg.Transport.MaxFrameSize),
		PingInterval:    cfg.Transport.PingInterval,
		ReadIdleTimeout: cfg.Transport.ReadIdleTimeout,
		WriteTimeout:    cfg.Transport.WriteTimeout,
		MaxDeviceName:   cfg.Session.MaxDeviceName,
	}, hubMetrics)
	wsAdapter.SetStatsRecorder(statsStore)

	apiServer := api.NewServer(api.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
	}, api.Deps{
		Registry:  reg,
		WS:        wsAdapter,
		Conns:     wsAdapter,
		Stats:     statsStore,
		Feedback:  feedbackLog,
		Metrics:   metricsHandler,
		Web:       web.Handler(),
		Version:   buildVersion,
		StartedAt: time.Now(),
	})

	// Write PID file if specified
	if pidFile != "" {
		if err := writePidFile(pidFile); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	go janitor.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("hub is running", logger.Addr(netutil.BaseURL(apiServer.Port())))
	fmt.Printf("Hub running at %s (Ctrl+C to stop)\n", netutil.BaseURL(apiServer.Port()))

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")

		// Close relay connections first so every device gets a close
		// frame, then stop the janitor and the HTTP server.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := wsAdapter.Shutdown(shutdownCtx); err != nil {
			logger.Warn("relay connections not fully drained", logger.Err(err))
		}
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("hub stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
		logger.Info("hub stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
