package app

import (
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/services"
	"github.com/dandarts/dandarts-backend/internal/sse"
)

type Services struct {
	Match    services.MatchService
	Notifier services.MatchNotifier
	Sweeper  *services.Sweeper

	// Emitter is where match.changed signals leave the service: the local
	// hub, or the Redis bus when running multi-instance.
	Emitter services.SSEEmitter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseHub *sse.SSEHub, clients Clients, clock clockwork.Clock) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}

	notifier := services.NewMatchNotifier(emitter)

	matchService := services.NewMatchService(
		db, log,
		services.MatchServiceConfig{
			ChallengeTTL:  cfg.ChallengeTTL,
			JoinWindowTTL: cfg.JoinWindowTTL,
		},
		repos.Match,
		repos.ActiveMatch,
		repos.Block,
		notifier,
		clock,
	)

	sweeper := services.NewSweeper(
		log,
		services.SweeperConfig{
			Interval:      cfg.SweepInterval,
			BatchSize:     cfg.SweepBatchSize,
			Concurrency:   cfg.SweepConcurrency,
			RetentionDays: cfg.MatchRetentionDays,
		},
		repos.Match,
		matchService,
		clock,
	)

	return Services{
		Match:    matchService,
		Notifier: notifier,
		Sweeper:  sweeper,
		Emitter:  emitter,
	}
}
