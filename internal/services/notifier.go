package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/sse"
)

// MatchNotifier publishes the payload-free change signal. The data carries
// the match id and nothing else: no status, no scores, no timestamps.
// Clients re-fetch; the signal is at-least-once and fire-and-forget.
type MatchNotifier interface {
	MatchChanged(matchID, challengerID, receiverID uuid.UUID)
}

type matchNotifier struct {
	emit SSEEmitter
}

func NewMatchNotifier(emit SSEEmitter) MatchNotifier {
	return &matchNotifier{emit: emit}
}

func (n *matchNotifier) MatchChanged(matchID, challengerID, receiverID uuid.UUID) {
	if n == nil || n.emit == nil || matchID == uuid.Nil {
		return
	}
	data := map[string]any{"match_id": matchID.String()}
	channels := []string{sse.MatchChannel(matchID)}
	if challengerID != uuid.Nil {
		channels = append(channels, sse.PlayerChannel(challengerID))
	}
	if receiverID != uuid.Nil && receiverID != challengerID {
		channels = append(channels, sse.PlayerChannel(receiverID))
	}
	for _, ch := range channels {
		n.emit.Emit(context.Background(), sse.SSEMessage{
			Channel: ch,
			Event:   sse.SSEEventMatchChanged,
			Data:    data,
		})
	}
}
