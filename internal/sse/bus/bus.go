package bus

import (
	"context"

	"github.com/dandarts/dandarts-backend/internal/sse"
)

type Bus interface {
	Publish(ctx context.Context, msg sse.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error
	Close() error
}
