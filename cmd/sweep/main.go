package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/dandarts/dandarts-backend/internal/app"
	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/services"
)

// One-shot expiry sweep against the configured store. Useful for cron-style
// deployments that do not run the in-process sweeper, and for inspecting the
// due set with -dry-run before letting it loose.
func main() {
	var dryRun bool
	var batch int
	flag.BoolVar(&dryRun, "dry-run", false, "print due matches without expiring them")
	flag.IntVar(&batch, "batch", 0, "override SWEEP_BATCH_SIZE for this run")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading environment variables directly")
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	limit := batch
	if limit <= 0 {
		limit = application.Cfg.SweepBatchSize
	}

	if dryRun {
		dbc := dbctx.Context{Ctx: ctx}
		now := time.Now().UTC()
		challenges, err := application.Repos.Match.ListDueChallengeExpiry(dbc, now, limit)
		if err != nil {
			fmt.Printf("list due challenges: %v\n", err)
			return
		}
		joins, err := application.Repos.Match.ListDueJoinExpiry(dbc, now, limit)
		if err != nil {
			fmt.Printf("list due join windows: %v\n", err)
			return
		}
		for _, id := range challenges {
			fmt.Printf("due (challenge window): %s\n", id)
		}
		for _, id := range joins {
			fmt.Printf("due (join window): %s\n", id)
		}
		fmt.Printf("dry run: %d due, nothing expired\n", len(challenges)+len(joins))
		return
	}

	sweeper := application.Services.Sweeper
	if batch > 0 {
		cfg := application.Cfg
		sweeper = services.NewSweeper(
			application.Log,
			services.SweeperConfig{
				Interval:      cfg.SweepInterval,
				BatchSize:     batch,
				Concurrency:   cfg.SweepConcurrency,
				RetentionDays: cfg.MatchRetentionDays,
			},
			application.Repos.Match,
			application.Services.Match,
			clockwork.NewRealClock(),
		)
	}

	n, err := sweeper.SweepOnce(ctx)
	if err != nil {
		fmt.Printf("sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("expired %d matches\n", n)
}
