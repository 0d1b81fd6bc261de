package app

import (
	apphttp "github.com/dandarts/dandarts-backend/internal/http"
	httpH "github.com/dandarts/dandarts-backend/internal/http/handlers"
	httpMW "github.com/dandarts/dandarts-backend/internal/http/middleware"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/sse"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Match    *httpH.MatchHandler
	Realtime *httpH.RealtimeHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			Mode:         cfg.AuthMode,
			JWTSecretKey: cfg.JWTSecretKey,
		}),
	}
}

func wireHandlers(log *logger.Logger, services Services, sseHub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Match:    httpH.NewMatchHandler(log, services.Match),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		MatchHandler:    handlers.Match,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
		ServiceName:     cfg.ServiceName,
	})
}
