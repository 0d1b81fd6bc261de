package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/dandarts/dandarts-backend/internal/http/handlers"
	httpMW "github.com/dandarts/dandarts-backend/internal/http/middleware"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware  *httpMW.AuthMiddleware
	MatchHandler    *httpH.MatchHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler

	// ServiceName labels otel spans; tracing is skipped when empty.
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Matches
		if cfg.MatchHandler != nil {
			api.POST("/matches", cfg.MatchHandler.CreateChallenge)
			api.GET("/matches", cfg.MatchHandler.ListMatches)
			api.GET("/matches/:id", cfg.MatchHandler.GetMatch)
			api.POST("/matches/:id/accept", cfg.MatchHandler.AcceptChallenge)
			api.POST("/matches/:id/cancel", cfg.MatchHandler.CancelMatch)
			api.POST("/matches/:id/join", cfg.MatchHandler.JoinMatch)
			api.POST("/matches/:id/visits", cfg.MatchHandler.SaveVisit)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			api.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			api.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}
	}

	return r
}
