package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gemini-gateway/pkg/cli"
	"gemini-gateway/pkg/config"
	"gemini-gateway/pkg/dispatch"
	"gemini-gateway/pkg/httpapi"
	"gemini-gateway/pkg/observability/evidence"
	"gemini-gateway/pkg/observability/metrics"
	"gemini-gateway/pkg/observability/schedule"
	"gemini-gateway/pkg/pool"
	"gemini-gateway/pkg/security/auth"
	"gemini-gateway/pkg/upstream/gemini"
)

var runFlags struct {
	dryRun bool
	output string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server, loading configuration from the environment,
then block until a shutdown signal arrives.

Examples:
  # Start with configuration from the environment
  gateway run

  # Validate configuration without starting the server
  gateway run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate configuration without starting the server")
	runCmd.Flags().StringVar(&runFlags.output, "output", "text", "dry-run summary format: text or json")
}

// dryRunSummary is a redacted view of the loaded configuration: credentials
// are reduced to a count so --dry-run output is safe to paste into a ticket.
type dryRunSummary struct {
	Environment      string   `json:"environment"`
	Address          string   `json:"address"`
	LogLevel         string   `json:"log_level"`
	CORSOrigins      []string `json:"cors_origins"`
	GeminiKeyCount   int      `json:"gemini_key_count"`
	GeminiKeysFile   string   `json:"gemini_keys_file,omitempty"`
	ClientKeyCount   int      `json:"client_key_count"`
	AdminKeyCount    int      `json:"admin_key_count"`
	EvidenceDBPath   string   `json:"evidence_db_path,omitempty"`
	PoolSweepCron    string   `json:"pool_sweep_schedule,omitempty"`
}

func newDryRunSummary(cfg *config.Config) dryRunSummary {
	return dryRunSummary{
		Environment:    string(cfg.ServiceEnvironment),
		Address:        fmt.Sprintf("%s:%d", cfg.ServiceHost, cfg.ServicePort),
		LogLevel:       cfg.ServiceLogLevel,
		CORSOrigins:    cfg.ServiceCORSOrigins,
		GeminiKeyCount: len(cfg.GeminiAPIKeys),
		GeminiKeysFile: cfg.GeminiAPIKeysFile,
		ClientKeyCount: len(cfg.SecurityAdapterAPIKeys),
		AdminKeyCount:  len(cfg.SecurityAdminAPIKeys),
		EvidenceDBPath: cfg.EvidenceDBPath,
		PoolSweepCron:  cfg.PoolSweepSchedule,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load configuration: %v", err))
	}

	logLevel := parseLogLevel(cfg.ServiceLogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if runFlags.dryRun {
		format := cli.FormatText
		if runFlags.output == "json" {
			format = cli.FormatJSON
		}
		formatter := cli.NewFormatter(format)
		if err := formatter.FormatTo(os.Stdout, newDryRunSummary(cfg)); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to render configuration summary: %w", err))
		}
		return nil
	}

	logger.Info("starting gateway", "environment", cfg.ServiceEnvironment, "address", fmt.Sprintf("%s:%d", cfg.ServiceHost, cfg.ServicePort))

	credPool, err := pool.New(cfg.GeminiAPIKeys, pool.Config{
		CoolingPeriod: cfg.GeminiCoolingPeriod,
		MaxRetries:    cfg.GeminiMaxRetries,
	}, logger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize credential pool: %w", err))
	}

	keyWatcher, err := config.WatchKeysFile(cfg.GeminiAPIKeysFile, credPool, logger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to start credential file watcher: %w", err))
	}
	if keyWatcher != nil {
		defer keyWatcher.Close()
	}

	upstreamClient := gemini.New(cfg.GeminiRequestTimeout)
	dispatcher := dispatch.New(credPool, upstreamClient, cfg.GeminiMaxRetries, logger)

	clientAuth := auth.NewAPIKeyValidator(auth.TierClient, cfg.SecurityAdapterAPIKeys)
	adminAuth := auth.NewAPIKeyValidator(auth.TierAdmin, cfg.SecurityAdminAPIKeys)

	m := metrics.New()

	var evidenceStore *evidence.SQLiteStore
	if cfg.EvidenceDBPath != "" {
		evidenceStore, err = evidence.NewSQLiteStore(cfg.EvidenceDBPath, logger)
		if err != nil {
			logger.Warn("failed to initialize evidence store, continuing without it", "error", err)
			evidenceStore = nil
		} else {
			defer evidenceStore.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := schedule.NewSweeper(credPool, m, logger)
	if err := sweeper.Start(ctx, cfg.PoolSweepSchedule); err != nil {
		logger.Warn("failed to start pool sweep scheduler", "error", err)
	}

	deps := httpapi.Deps{
		Config:     cfg,
		Dispatcher: dispatcher,
		Pool:       credPool,
		ClientAuth: clientAuth,
		AdminAuth:  adminAuth,
		Logger:     logger,
		Version:    Version,
		Metrics:    m,
	}
	if evidenceStore != nil {
		deps.Evidence = evidenceStore
	}
	srv := httpapi.NewServer(deps)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
