package main

import (
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/rajik786786-oss/kgf-billing/internal/config"
	"github.com/rajik786786-oss/kgf-billing/internal/notify"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(envOrDefault("OBS_LOG_FORMAT", "json"), envOrDefault("OBS_LOG_LEVEL", "info")).
		With().Str("env", cfg.AppEnv).Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "pos"), nil)

	redisOpts, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri")
	}

	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})

	worker := notify.Worker{
		Sender: notify.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSSenderID),
		Log:    logger,
	}

	mux := asynq.NewServeMux()
	worker.Register(mux)

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker exited unexpectedly")
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
