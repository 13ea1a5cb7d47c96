package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
	"github.com/marmos91/filebank/pkg/api"
	"github.com/marmos91/filebank/pkg/api/auth"
	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/metrics"
	"github.com/spf13/cobra"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the filebank server",
	Long: `Start the filebank HTTP server in the foreground.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/filebank/config.yaml.

Examples:
  # Start with the default config
  filebank start

  # Start with custom config file
  filebank start --config /etc/filebank/config.yaml

  # Start with environment variable overrides
  FILEBANK_LOGGING_LEVEL=DEBUG FILEBANK_STORAGE_TYPE=s3 filebank start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file while running")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "filebank",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is cancelled by the time this runs
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "filebank",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	fmt.Println("Filebank - virtual file tree server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// The registry must exist before any store or service asks for collectors.
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port})
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	svc, registry, closeStores, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	logger.Info("Storage ready",
		logger.KeyStore, cfg.Database.Type,
		logger.KeyBackend, cfg.Storage.Type,
		"schemas", registry.Dir(),
		"schema_required", cfg.Schemas.Required)

	if cfg.Schemas.Watch && registry.Dir() != "" {
		err := registry.Watch(ctx, func(err error) {
			if err != nil {
				logger.Warn("Schema reload failed", logger.KeyError, err)
				return
			}
			logger.Info("Schemas reloaded", logger.KeyPath, registry.Dir())
		})
		if err != nil {
			return fmt.Errorf("failed to watch schemas: %w", err)
		}
	}

	apiCfg := api.Config{
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		MaxUploadSize: cfg.Server.MaxUploadSize.Int64(),
		Metrics:       metrics.NewHTTPMetrics(),
	}
	if cfg.Auth.Enabled {
		jwtService, err := newJWTService(cfg)
		if err != nil {
			return err
		}
		apiCfg.Auth = &api.AuthConfig{
			JWT:          jwtService,
			ReadScopes:   config.SplitScopes(cfg.Auth.ReadScope),
			WriteScopes:  config.SplitScopes(cfg.Auth.WriteScope),
			DeleteScopes: config.SplitScopes(cfg.Auth.DeleteScope),
		}
		logger.Info("Authorization enabled",
			"read_scope", cfg.Auth.ReadScope,
			"write_scope", cfg.Auth.WriteScope,
			"delete_scope", cfg.Auth.DeleteScope)
	} else {
		logger.Warn("Authorization disabled: every request is accepted")
	}
	apiServer := api.NewServer(apiCfg, svc)

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 2)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()
	if metricsServer != nil {
		go func() {
			serverDone <- metricsServer.Start(ctx)
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown",
			"timeout", cfg.ShutdownTimeout)
	case runErr = <-serverDone:
		if runErr != nil {
			logger.Error("Server error", logger.KeyError, runErr)
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer done()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	if runErr == nil {
		logger.Info("Server stopped gracefully")
	}
	return runErr
}

func newJWTService(cfg *config.Config) (*auth.JWTService, error) {
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure authorization: %w", err)
	}
	return svc, nil
}
