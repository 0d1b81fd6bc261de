package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/dandarts/dandarts-backend/internal/data/repos"
	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

// MatchExpirer is the slice of MatchService the sweeper needs.
type MatchExpirer interface {
	ExpireMatch(dbc dbctx.Context, matchID uuid.UUID) (bool, error)
}

type SweeperConfig struct {
	Interval    time.Duration
	BatchSize   int
	Concurrency int
	// RetentionDays prunes terminal matches older than this many days.
	// Zero keeps them forever.
	RetentionDays int
}

// Sweeper converges matches whose deadlines passed without anyone poking
// them. Commands apply the same expiry lazily; the sweep is the fallback
// that reaches abandoned rows.
type Sweeper struct {
	log     *logger.Logger
	cfg     SweeperConfig
	matches repos.MatchRepo
	svc     MatchExpirer
	clock   clockwork.Clock

	sched gocron.Scheduler
}

func NewSweeper(baseLog *logger.Logger, cfg SweeperConfig, matches repos.MatchRepo, svc MatchExpirer, clock clockwork.Clock) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		log:     baseLog.With("component", "MatchSweeper"),
		cfg:     cfg,
		matches: matches,
		svc:     svc,
		clock:   clock,
	}
}

// Start registers the periodic sweep, plus the daily retention prune when
// configured, and returns. Jobs stop when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Warn("Sweep pass failed", "error", err)
			}
		}),
	); err != nil {
		return err
	}
	if s.cfg.RetentionDays > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(func() {
				if _, err := s.PruneOnce(ctx); err != nil {
					s.log.Warn("Retention prune failed", "error", err)
				}
			}),
		); err != nil {
			return err
		}
	}
	sched.Start()
	s.sched = sched
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			s.log.Warn("Scheduler shutdown error", "error", err)
		}
	}()
	s.log.Info("Match sweeper started", "interval", s.cfg.Interval, "batch_size", s.cfg.BatchSize, "retention_days", s.cfg.RetentionDays)
	return nil
}

// SweepOnce runs a single pass over the due matches and reports how many it
// expired. One bad row never stalls the rest of the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	now := s.clock.Now().UTC()

	challenge, err := s.matches.ListDueChallengeExpiry(dbc, now, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	join, err := s.matches.ListDueJoinExpiry(dbc, now, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	due := append(challenge, join...)
	if len(due) == 0 {
		return 0, nil
	}

	var expired int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range due {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			applied, err := s.svc.ExpireMatch(dbctx.Context{Ctx: gctx}, id)
			if err != nil {
				s.log.Warn("Expire failed during sweep", "match_id", id, "error", err)
				return nil
			}
			if applied {
				atomic.AddInt32(&expired, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(atomic.LoadInt32(&expired)), err
	}
	n := int(atomic.LoadInt32(&expired))
	if n > 0 {
		s.log.Info("Sweep pass expired matches", "count", n, "due", len(due))
	}
	return n, nil
}

// PruneOnce hard-deletes terminal matches past the retention window.
func (s *Sweeper) PruneOnce(ctx context.Context) (int64, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	n, err := s.matches.DeleteTerminalBefore(dbctx.Context{Ctx: ctx}, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Pruned terminal matches", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
