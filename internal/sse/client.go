package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	closed   sync.Once
	Logger   *logger.Logger
}
