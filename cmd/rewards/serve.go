package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/api"
	"github.com/joacominatel/rewards/internal/infrastructure/auth"
	"github.com/joacominatel/rewards/internal/infrastructure/config"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
	"github.com/joacominatel/rewards/internal/infrastructure/metrics"
	"github.com/joacominatel/rewards/internal/infrastructure/worker"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin HTTP API",
	Long: `Start the admin HTTP API. When REWARDS_RECOMPUTE_INTERVAL is set the
service also recomputes every user on that period.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewWithLevel(logging.ParseLevel(cfg.LogLevel))
	logger.Info("rewards starting up")

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eng, err := newEngine(startupCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err.Error())
		return err
	}
	defer eng.Close()

	logger.Info("rewards infrastructure ready", "schema", eng.conn.Schema())

	appMetrics := metrics.New()
	useCase := eng.useCase.WithMetrics(appMetrics)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// discrepancy alerts (optional)
	var webhookWorker *worker.WebhookWorker
	if cfg.Alerts.WebhookURL != "" {
		webhookConfig := worker.DefaultWebhookWorkerConfig()
		webhookConfig.TargetURL = cfg.Alerts.WebhookURL
		webhookConfig.Secret = cfg.Alerts.WebhookSecret
		webhookConfig.Thresholds = domain.DiscrepancyThresholds{MinAbsolute: domain.Points(cfg.Alerts.MinDiscrepancy)}

		webhookWorker = worker.NewWebhookWorker(webhookConfig, logger)
		webhookWorker.Start(workerCtx)
		useCase = useCase.WithNotifier(webhookWorker)
	}

	// periodic recompute (optional)
	var recomputeWorker *worker.RecomputeWorker
	if cfg.Rewards.RecomputeInterval > 0 {
		recomputeWorker = worker.NewRecomputeWorker(useCase, worker.RecomputeWorkerConfig{
			Interval:   cfg.Rewards.RecomputeInterval,
			BatchLimit: cfg.Rewards.BatchLimit,
			RunOnStart: true,
		}, logger)
		recomputeWorker.Start(workerCtx)
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = ":" + cfg.Server.Port
	server := api.NewServer(serverConfig, logger)

	readiness := map[string]api.ReadinessCheck{
		"database": eng.conn.Ping,
	}
	routes := api.RouterConfig{
		Computer:        useCase,
		Validator:       auth.NewJWTValidator(cfg.Auth.JWTSecret),
		ReadinessChecks: readiness,
		Logger:          logger,
		Metrics:         appMetrics,
	}
	if eng.redis != nil {
		readiness["redis"] = eng.redis.HealthCheck
		routes.Ranker = eng.redis
	}
	api.RegisterRoutes(server.Echo(), routes)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("http server error", "error", err.Error())
		}
	}()

	// wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("rewards shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err.Error())
	}

	// the recompute worker may still be notifying; stop it before the webhook drain
	if recomputeWorker != nil {
		recomputeWorker.Stop()
	}
	if webhookWorker != nil {
		webhookWorker.Stop()
	}

	logger.Info("rewards shutdown complete")
	return nil
}
