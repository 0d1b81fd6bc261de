package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/sse/bus"
)

type Clients struct {
	// SSEBus is nil when REDIS_ADDR is unset; the hub then broadcasts
	// locally and match.changed signals stay single-instance.
	SSEBus bus.Bus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var sseBus bus.Bus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	}

	return Clients{SSEBus: sseBus}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
}
