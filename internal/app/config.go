package app

import (
	"time"

	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/utils"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string

	DBDriver string

	AuthMode     string
	JWTSecretKey string

	// Challenge and join-window lifetimes; overdue matches expire.
	ChallengeTTL  time.Duration
	JoinWindowTTL time.Duration

	RunSweeper         bool
	SweepInterval      time.Duration
	SweepBatchSize     int
	SweepConcurrency   int
	MatchRetentionDays int
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "dandarts-backend", log),

		DBDriver: utils.GetEnv("DB_DRIVER", "postgres", log),

		AuthMode:     utils.GetEnv("AUTH_MODE", "jwt", log),
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),

		ChallengeTTL:  time.Duration(utils.GetEnvAsInt("CHALLENGE_TTL_SECONDS", 86400, log)) * time.Second,
		JoinWindowTTL: time.Duration(utils.GetEnvAsInt("JOIN_WINDOW_TTL_SECONDS", 300, log)) * time.Second,

		RunSweeper:         utils.GetEnvAsBool("RUN_SWEEPER", true, log),
		SweepInterval:      time.Duration(utils.GetEnvAsInt("SWEEP_INTERVAL_SECONDS", 60, log)) * time.Second,
		SweepBatchSize:     utils.GetEnvAsInt("SWEEP_BATCH_SIZE", 100, log),
		SweepConcurrency:   utils.GetEnvAsInt("SWEEP_CONCURRENCY", 8, log),
		MatchRetentionDays: utils.GetEnvAsInt("MATCH_RETENTION_DAYS", 0, log),
	}
}
