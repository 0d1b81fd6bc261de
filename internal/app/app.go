package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/data/db"
	apphttp "github.com/dandarts/dandarts-backend/internal/http"
	"github.com/dandarts/dandarts-backend/internal/observability"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *sse.SSEHub
	Server   *apphttp.Server
	Router   *gin.Engine

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})

	theDB, err := openDB(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	sseHub := sse.NewSSEHub(log)

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, sseHub, clients, clockwork.NewRealClock())
	handlerset := wireHandlers(log, serviceset, sseHub)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       sseHub,
		Server:       server,
		Router:       server.Engine,
		otelShutdown: otelShutdown,
	}, nil
}

func openDB(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "sqlite":
		sq, err := db.NewSqliteService(log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return sq.DB(), nil
	default:
		pg, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg.DB(), nil
	}
}

// Start launches the background pieces: the Redis-to-hub forwarder when a
// bus is configured, and the expiry sweeper unless RUN_SWEEPER is off.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			cancel()
			a.cancel = nil
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	if a.Cfg.RunSweeper {
		if err := a.Services.Sweeper.Start(ctx); err != nil {
			cancel()
			a.cancel = nil
			return fmt.Errorf("start sweeper: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(shutdownCtx)
		cancel()
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
