package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/http/response"
	"github.com/dandarts/dandarts-backend/internal/platform/ctxutil"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/sse"
)

// RealtimeHandler serves the SSE stream that carries match.changed signals.
// One stream per player; a reconnect replaces the previous stream so stale
// tabs do not pile up subscriptions.
type RealtimeHandler struct {
	Log *logger.Logger
	Hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient // key: PlayerID
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log,
		Hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

// GET /api/sse/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	playerID := rd.PlayerID
	h.Log.Info("SSEStream open", "player_id", playerID.String())

	h.mu.Lock()
	if existing, ok := h.clients[playerID]; ok {
		h.Hub.CloseClient(existing)
		delete(h.clients, playerID)
	}
	client := h.Hub.NewSSEClient(playerID)
	client.ID = uuid.New()
	client.Logger = h.Log.With("SSEClientID", client.ID)
	h.clients[playerID] = client
	h.mu.Unlock()

	// Every stream listens on the player's own channel; match channels are
	// opt-in via SSESubscribe.
	h.Hub.AddChannel(client, sse.PlayerChannel(playerID))

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	// Cleanup after disconnect. A replacement stream may already own the
	// map slot, so only remove our own client.
	h.mu.Lock()
	if h.clients[playerID] == client {
		delete(h.clients, playerID)
	}
	h.mu.Unlock()
	h.Hub.CloseClient(client)
}

type sseChannelRequest struct {
	Channel string `json:"channel"`
}

// POST /api/sse/subscribe
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req sseChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.PlayerID]
	h.mu.RUnlock()
	if !exists {
		response.RespondError(c, http.StatusConflict, "no_active_stream", nil)
		return
	}

	h.Hub.AddChannel(client, req.Channel)
	response.RespondOK(c, gin.H{"message": "subscribed", "channel": req.Channel})
}

// POST /api/sse/unsubscribe
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req sseChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.PlayerID]
	h.mu.RUnlock()
	if !exists {
		response.RespondError(c, http.StatusConflict, "no_active_stream", nil)
		return
	}

	h.Hub.RemoveChannel(client, req.Channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": req.Channel})
}
