package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/http/response"
	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/platform/apierr"
	"github.com/dandarts/dandarts-backend/internal/platform/ctxutil"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/services"
	"github.com/dandarts/dandarts-backend/internal/types"
)

// MatchHandler exposes the match lifecycle commands. The caller identity
// always comes from the request context; bodies only ever name the other
// participant.
type MatchHandler struct {
	log          *logger.Logger
	matchService services.MatchService
}

func NewMatchHandler(log *logger.Logger, matchService services.MatchService) *MatchHandler {
	handlerLogger := log.With("handler", "MatchHandler")
	return &MatchHandler{log: handlerLogger, matchService: matchService}
}

type createChallengeRequest struct {
	ReceiverID  string `json:"receiver_id"`
	GameVariant string `json:"game_variant"`
	MatchFormat int    `json:"match_format"`
}

// POST /api/matches
func (h *MatchHandler) CreateChallenge(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_receiver_id", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	m, err := h.matchService.CreateChallenge(dbc, rd.PlayerID, receiverID, req.GameVariant, req.MatchFormat)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("CreateChallenge failed", "error", err, "player_id", rd.PlayerID)
		response.RespondError(c, http.StatusInternalServerError, "create_challenge_failed", err)
		return
	}

	response.RespondCreated(c, gin.H{"match": m})
}

// GET /api/matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	matches, err := h.matchService.ListMatchesForPlayer(dbc, rd.PlayerID)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("ListMatches failed", "error", err, "player_id", rd.PlayerID)
		response.RespondError(c, http.StatusInternalServerError, "list_matches_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"matches": matches})
}

// GET /api/matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil || matchID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_match_id", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	m, err := h.matchService.GetMatch(dbc, matchID, rd.PlayerID)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("GetMatch failed", "error", err, "match_id", matchID)
		response.RespondError(c, http.StatusInternalServerError, "get_match_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"match": m})
}

// POST /api/matches/:id/accept
func (h *MatchHandler) AcceptChallenge(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil || matchID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_match_id", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	m, err := h.matchService.AcceptChallenge(dbc, matchID, rd.PlayerID)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("AcceptChallenge failed", "error", err, "match_id", matchID)
		response.RespondError(c, http.StatusInternalServerError, "accept_challenge_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"match": m})
}

// POST /api/matches/:id/cancel
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil || matchID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_match_id", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.matchService.CancelMatch(dbc, matchID, rd.PlayerID); err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("CancelMatch failed", "error", err, "match_id", matchID)
		response.RespondError(c, http.StatusInternalServerError, "cancel_match_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/matches/:id/join
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil || matchID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_match_id", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	m, err := h.matchService.JoinMatch(dbc, matchID, rd.PlayerID)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("JoinMatch failed", "error", err, "match_id", matchID)
		response.RespondError(c, http.StatusInternalServerError, "join_match_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"match": m})
}

type dartPayload struct {
	Base       int `json:"base"`
	Multiplier int `json:"multiplier"`
}

type saveVisitRequest struct {
	TurnIndex int           `json:"turn_index"`
	Darts     []dartPayload `json:"darts"`
}

// POST /api/matches/:id/visits
func (h *MatchHandler) SaveVisit(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PlayerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil || matchID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_match_id", err)
		return
	}

	var req saveVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	darts := make([]types.Dart, 0, len(req.Darts))
	for _, d := range req.Darts {
		darts = append(darts, types.Dart{Base: d.Base, Multiplier: d.Multiplier})
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	m, err := h.matchService.SaveVisit(dbc, matchID, rd.PlayerID, req.TurnIndex, darts)
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("SaveVisit failed", "error", err, "match_id", matchID, "player_id", rd.PlayerID)
		response.RespondError(c, http.StatusInternalServerError, "save_visit_failed", err)
		return
	}

	response.RespondOK(c, gin.H{"match": m})
}
