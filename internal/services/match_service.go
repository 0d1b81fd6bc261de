package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/data/repos"
	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	errs "github.com/dandarts/dandarts-backend/internal/pkg/errors"
	"github.com/dandarts/dandarts-backend/internal/platform/apierr"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/scoring"
	"github.com/dandarts/dandarts-backend/internal/types"
)

// MatchService owns the match lifecycle. Every state change goes through a
// version-checked update, so two devices hammering the same match resolve to
// exactly one winner per transition and the loser gets a conflict it can
// resolve by re-fetching.
type MatchService interface {
	CreateChallenge(dbc dbctx.Context, challengerID, receiverID uuid.UUID, gameVariant string, matchFormat int) (*types.Match, error)
	AcceptChallenge(dbc dbctx.Context, matchID, receiverID uuid.UUID) (*types.Match, error)
	CancelMatch(dbc dbctx.Context, matchID, requesterID uuid.UUID) error
	JoinMatch(dbc dbctx.Context, matchID, playerID uuid.UUID) (*types.Match, error)
	SaveVisit(dbc dbctx.Context, matchID, playerID uuid.UUID, turnIndex int, darts []types.Dart) (*types.Match, error)
	GetMatch(dbc dbctx.Context, matchID, viewerID uuid.UUID) (*types.Match, error)
	ListMatchesForPlayer(dbc dbctx.Context, playerID uuid.UUID) ([]*types.Match, error)
	// ExpireMatch applies expiry when the match is genuinely overdue. Safe to
	// call on any match: rows that are not due, already terminal, or racing
	// another command report false without error.
	ExpireMatch(dbc dbctx.Context, matchID uuid.UUID) (bool, error)
}

type MatchServiceConfig struct {
	ChallengeTTL  time.Duration
	JoinWindowTTL time.Duration
}

// validMatchFormats are the accepted best-of leg counts.
var validMatchFormats = map[int]bool{1: true, 3: true, 5: true, 7: true}

type matchService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      MatchServiceConfig
	matches  repos.MatchRepo
	claims   repos.ActiveMatchRepo
	blocks   repos.BlockRepo
	notifier MatchNotifier
	clock    clockwork.Clock
}

func NewMatchService(
	db *gorm.DB,
	log *logger.Logger,
	cfg MatchServiceConfig,
	matches repos.MatchRepo,
	claims repos.ActiveMatchRepo,
	blocks repos.BlockRepo,
	notifier MatchNotifier,
	clock clockwork.Clock,
) MatchService {
	serviceLog := log.With("service", "MatchService")
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &matchService{
		db:       db,
		log:      serviceLog,
		cfg:      cfg,
		matches:  matches,
		claims:   claims,
		blocks:   blocks,
		notifier: notifier,
		clock:    clock,
	}
}

func (s *matchService) CreateChallenge(dbc dbctx.Context, challengerID, receiverID uuid.UUID, gameVariant string, matchFormat int) (*types.Match, error) {
	if challengerID == uuid.Nil || receiverID == uuid.Nil || challengerID == receiverID {
		return nil, apierr.New(http.StatusBadRequest, "invalid_participants", errs.ErrInvalidParticipants)
	}
	if !validMatchFormats[matchFormat] {
		return nil, apierr.New(http.StatusBadRequest, "invalid_match_format", fmt.Errorf("match_format must be 1, 3, 5 or 7"))
	}
	if _, err := scoring.ForVariant(s.log, gameVariant); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "unknown_variant", err)
	}

	var out *types.Match
	err := s.withTx(dbc, func(inner dbctx.Context) error {
		blocked, err := s.blocks.IsBlocked(inner, challengerID, receiverID)
		if err != nil {
			return err
		}
		if blocked {
			return apierr.New(http.StatusForbidden, "blocked", errs.ErrBlocked)
		}
		expires := s.clock.Now().UTC().Add(s.cfg.ChallengeTTL)
		created, err := s.matches.Create(inner, &types.Match{
			Status:             types.StatusPending,
			ChallengerID:       challengerID,
			ReceiverID:         receiverID,
			GameVariant:        gameVariant,
			MatchFormat:        matchFormat,
			CurrentLeg:         1,
			ChallengeExpiresAt: &expires,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		s.log.Warn("Create challenge transaction error", "error", err)
		return nil, err
	}
	s.log.Info("Challenge created", "match_id", out.ID, "challenger_id", challengerID, "receiver_id", receiverID, "game_variant", gameVariant)
	s.notifyChanged(out)
	return out, nil
}

func (s *matchService) AcceptChallenge(dbc dbctx.Context, matchID, receiverID uuid.UUID) (*types.Match, error) {
	pre, err := s.loadForParticipant(dbc, matchID, receiverID)
	if err != nil {
		return nil, err
	}
	if err := s.expireOverdue(dbc, pre); err != nil {
		return nil, err
	}

	var out *types.Match
	err = s.withTx(dbc, func(inner dbctx.Context) error {
		m, err := s.loadForParticipant(inner, matchID, receiverID)
		if err != nil {
			return err
		}
		if m.Status == types.StatusExpired {
			return apierr.New(http.StatusGone, "expired", errs.ErrExpired)
		}
		if m.Status != types.StatusPending {
			return apierr.New(http.StatusConflict, "already_decided", errs.ErrAlreadyDecided)
		}
		if receiverID == m.ChallengerID {
			return apierr.New(http.StatusConflict, "invalid_transition", fmt.Errorf("%w: only the receiver can accept", errs.ErrInvalidTransition))
		}

		// Claims first. If either player already holds an active match the
		// rollback leaves both the claims and the pending challenge untouched.
		for _, playerID := range []uuid.UUID{m.ReceiverID, m.ChallengerID} {
			ok, err := s.claims.Claim(inner, playerID, m.ID, types.StatusReady)
			if err != nil {
				return err
			}
			if !ok {
				return apierr.New(http.StatusConflict, "concurrency_limit_exceeded", fmt.Errorf("%w: player %s", errs.ErrConcurrencyLimitExceeded, playerID))
			}
		}

		joinDeadline := s.clock.Now().UTC().Add(s.cfg.JoinWindowTTL)
		applied, err := s.matches.UpdateStateCAS(inner, m.ID, m.Version, map[string]interface{}{
			"status":                 types.StatusReady,
			"join_window_expires_at": joinDeadline,
		})
		if err != nil {
			return err
		}
		if !applied {
			return apierr.New(http.StatusConflict, "stale_state", errs.ErrStaleState)
		}
		out, err = s.matches.GetByID(inner, m.ID)
		return err
	})
	if err != nil {
		s.log.Warn("Accept challenge transaction error", "match_id", matchID, "error", err)
		return nil, err
	}
	s.log.Info("Challenge accepted", "match_id", matchID, "receiver_id", receiverID)
	s.decorate(out)
	s.notifyChanged(out)
	return out, nil
}

func (s *matchService) CancelMatch(dbc dbctx.Context, matchID, requesterID uuid.UUID) error {
	var out *types.Match
	err := s.withTx(dbc, func(inner dbctx.Context) error {
		m, err := s.loadForParticipant(inner, matchID, requesterID)
		if err != nil {
			return err
		}
		if !m.Status.CanTransitionTo(types.StatusCancelled) {
			return apierr.New(http.StatusConflict, "invalid_transition", fmt.Errorf("%w: %s -> cancelled", errs.ErrInvalidTransition, m.Status))
		}
		applied, err := s.matches.UpdateStateCAS(inner, m.ID, m.Version, map[string]interface{}{
			"status": types.StatusCancelled,
		})
		if err != nil {
			return err
		}
		if !applied {
			return apierr.New(http.StatusConflict, "stale_state", errs.ErrStaleState)
		}
		if err := s.claims.ReleaseForMatch(inner, m.ID); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		s.log.Warn("Cancel match transaction error", "match_id", matchID, "error", err)
		return err
	}
	s.log.Info("Match cancelled", "match_id", matchID, "requester_id", requesterID)
	s.notifyChanged(out)
	return nil
}

func (s *matchService) JoinMatch(dbc dbctx.Context, matchID, playerID uuid.UUID) (*types.Match, error) {
	pre, err := s.loadForParticipant(dbc, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if err := s.expireOverdue(dbc, pre); err != nil {
		return nil, err
	}

	var out *types.Match
	err = s.withTx(dbc, func(inner dbctx.Context) error {
		m, err := s.loadForParticipant(inner, matchID, playerID)
		if err != nil {
			return err
		}
		if m.Status == types.StatusExpired {
			return apierr.New(http.StatusGone, "expired", errs.ErrExpired)
		}
		if m.Status != types.StatusReady && m.Status != types.StatusLobby {
			return apierr.New(http.StatusConflict, "invalid_transition", fmt.Errorf("%w: cannot join from %s", errs.ErrInvalidTransition, m.Status))
		}

		joinedColumn := "challenger_joined"
		alreadyJoined := m.ChallengerJoined
		if playerID == m.ReceiverID {
			joinedColumn = "receiver_joined"
			alreadyJoined = m.ReceiverJoined
		}
		if alreadyJoined {
			return apierr.New(http.StatusConflict, "invalid_transition", fmt.Errorf("%w: already joined", errs.ErrInvalidTransition))
		}

		next := types.StatusLobby
		updates := map[string]interface{}{joinedColumn: true}
		if m.JoinedCount() == 1 {
			// Second distinct joiner starts play.
			rules, err := scoring.ForVariant(s.log, m.GameVariant)
			if err != nil {
				return err
			}
			next = types.StatusInProgress
			updates["current_player_id"] = m.ChallengerID
			updates["current_leg"] = 1
			updates["turn_index_in_leg"] = 0
			updates["challenger_score"] = rules.StartingScore()
			updates["receiver_score"] = rules.StartingScore()
		}
		updates["status"] = next

		applied, err := s.matches.UpdateStateCAS(inner, m.ID, m.Version, updates)
		if err != nil {
			return err
		}
		if !applied {
			return apierr.New(http.StatusConflict, "stale_state", errs.ErrStaleState)
		}
		if err := s.claims.UpdateStatusForMatch(inner, m.ID, next); err != nil {
			return err
		}
		out, err = s.matches.GetByID(inner, m.ID)
		return err
	})
	if err != nil {
		s.log.Warn("Join match transaction error", "match_id", matchID, "error", err)
		return nil, err
	}
	s.log.Info("Player joined match", "match_id", matchID, "player_id", playerID, "status", out.Status)
	s.decorate(out)
	s.notifyChanged(out)
	return out, nil
}

func (s *matchService) SaveVisit(dbc dbctx.Context, matchID, playerID uuid.UUID, turnIndex int, darts []types.Dart) (*types.Match, error) {
	var out *types.Match
	replay := false
	err := s.withTx(dbc, func(inner dbctx.Context) error {
		m, err := s.loadForParticipant(inner, matchID, playerID)
		if err != nil {
			return err
		}

		last, err := types.VisitFromJSON(m.LastVisit)
		if err != nil {
			return err
		}
		if last != nil && last.PlayerID == playerID && last.TurnIndex == turnIndex && types.SameDarts(last.Darts, darts) {
			// Retried save of the visit we already folded in. Report the
			// current state as success; this precedes the status gate so a
			// retried leg- or match-winning visit still reads as applied.
			out = m
			replay = true
			return nil
		}

		if m.Status != types.StatusInProgress {
			return apierr.New(http.StatusConflict, "match_not_in_progress", errs.ErrMatchNotInProgress)
		}
		if m.CurrentPlayerID == nil || *m.CurrentPlayerID != playerID {
			return apierr.New(http.StatusForbidden, "not_your_turn", errs.ErrNotYourTurn)
		}
		if turnIndex != m.TurnIndexInLeg {
			return apierr.New(http.StatusConflict, "duplicate_visit", fmt.Errorf("%w: got %d, open turn is %d", errs.ErrDuplicateVisit, turnIndex, m.TurnIndexInLeg))
		}
		if err := types.ValidateDarts(darts); err != nil {
			return apierr.New(http.StatusBadRequest, "invalid_visit", fmt.Errorf("%w: %s", errs.ErrInvalidVisit, err))
		}

		rules, err := scoring.ForVariant(s.log, m.GameVariant)
		if err != nil {
			return err
		}

		pre := m.ScoreOf(playerID)
		total := types.DartsTotal(darts)
		finalDouble := darts[len(darts)-1].IsDouble()
		opponent := m.OtherParticipant(playerID)

		scoreColumn, legsColumn := "challenger_score", "challenger_legs_won"
		legsWon := m.ChallengerLegsWon
		if playerID == m.ReceiverID {
			scoreColumn, legsColumn = "receiver_score", "receiver_legs_won"
			legsWon = m.ReceiverLegsWon
		}

		visit := &types.Visit{
			PlayerID:    playerID,
			Leg:         m.CurrentLeg,
			TurnIndex:   turnIndex,
			Darts:       darts,
			Total:       total,
			ScoreBefore: pre,
			ThrownAt:    s.clock.Now().UTC(),
		}

		updates := map[string]interface{}{}
		completed := false
		switch {
		case rules.IsWin(pre, total, finalDouble):
			visit.ScoreAfter = 0
			legsWon++
			updates[legsColumn] = legsWon
			if legsWon >= m.LegsNeeded() {
				completed = true
				updates[scoreColumn] = 0
				updates["status"] = types.StatusCompleted
				updates["winner_id"] = playerID
				updates["current_player_id"] = nil
			} else {
				// Next leg: fresh scores, counters restart, the starter
				// alternates off the challenger.
				nextLeg := m.CurrentLeg + 1
				starter := m.ChallengerID
				if nextLeg%2 == 0 {
					starter = m.ReceiverID
				}
				updates["current_leg"] = nextLeg
				updates["turn_index_in_leg"] = 0
				updates["challenger_score"] = rules.StartingScore()
				updates["receiver_score"] = rules.StartingScore()
				updates["current_player_id"] = starter
			}
		case rules.IsBust(pre, total, finalDouble):
			// Score stays; the turn is still consumed.
			visit.Bust = true
			visit.ScoreAfter = pre
			updates["turn_index_in_leg"] = m.TurnIndexInLeg + 1
			updates["current_player_id"] = opponent
		default:
			visit.ScoreAfter = pre - total
			updates[scoreColumn] = pre - total
			updates["turn_index_in_leg"] = m.TurnIndexInLeg + 1
			updates["current_player_id"] = opponent
		}

		raw, err := visit.ToJSON()
		if err != nil {
			return err
		}
		updates["last_visit"] = raw

		applied, err := s.matches.UpdateStateCAS(inner, m.ID, m.Version, updates)
		if err != nil {
			return err
		}
		if !applied {
			return apierr.New(http.StatusConflict, "stale_state", errs.ErrStaleState)
		}
		if completed {
			if err := s.claims.ReleaseForMatch(inner, m.ID); err != nil {
				return err
			}
		}
		out, err = s.matches.GetByID(inner, m.ID)
		return err
	})
	if err != nil {
		s.log.Warn("Save visit transaction error", "match_id", matchID, "player_id", playerID, "error", err)
		return nil, err
	}
	if out.Status == types.StatusCompleted && !replay {
		s.log.Info("Match completed", "match_id", matchID, "winner_id", playerID)
	}
	s.decorate(out)
	if !replay {
		s.notifyChanged(out)
	}
	return out, nil
}

func (s *matchService) GetMatch(dbc dbctx.Context, matchID, viewerID uuid.UUID) (*types.Match, error) {
	m, err := s.loadForParticipant(dbc, matchID, viewerID)
	if err != nil {
		return nil, err
	}
	s.decorate(m)
	return m, nil
}

func (s *matchService) ListMatchesForPlayer(dbc dbctx.Context, playerID uuid.UUID) ([]*types.Match, error) {
	rows, err := s.matches.ListByParticipant(dbc, playerID)
	if err != nil {
		return nil, err
	}
	hasActive := false
	for _, m := range rows {
		if m.Status.IsActive() {
			hasActive = true
			break
		}
	}
	for _, m := range rows {
		// A player already in an active match cannot accept another
		// challenge, so their open challenges render disabled.
		if hasActive && m.Status == types.StatusPending {
			m.Disabled = true
		}
		s.decorate(m)
	}
	return rows, nil
}

func (s *matchService) ExpireMatch(dbc dbctx.Context, matchID uuid.UUID) (bool, error) {
	var out *types.Match
	applied := false
	err := s.withTx(dbc, func(inner dbctx.Context) error {
		m, err := s.matches.GetByID(inner, matchID)
		if err != nil {
			return err
		}
		if m == nil || !m.Status.CanTransitionTo(types.StatusExpired) || !s.isOverdue(m) {
			return nil
		}
		ok, err := s.matches.UpdateStateCAS(inner, m.ID, m.Version, map[string]interface{}{
			"status": types.StatusExpired,
		})
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent command advanced the row; the next sweep
			// re-evaluates it.
			return nil
		}
		if err := s.claims.ReleaseForMatch(inner, m.ID); err != nil {
			return err
		}
		applied = true
		out = m
		return nil
	})
	if err != nil {
		s.log.Warn("Expire match transaction error", "match_id", matchID, "error", err)
		return false, err
	}
	if applied {
		s.log.Info("Match expired", "match_id", matchID, "from_status", out.Status)
		s.notifyChanged(out)
	}
	return applied, nil
}

// withTx runs fn inside the caller's transaction when one is supplied, and
// opens one otherwise.
func (s *matchService) withTx(dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

// loadForParticipant fetches the match and hides its existence from
// non-participants: both a missing row and a foreign one read as not found.
func (s *matchService) loadForParticipant(dbc dbctx.Context, matchID, playerID uuid.UUID) (*types.Match, error) {
	m, err := s.matches.GetByID(dbc, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.HasParticipant(playerID) {
		return nil, apierr.New(http.StatusNotFound, "match_not_found", errs.ErrNotFound)
	}
	return m, nil
}

// expiryDeadline returns the window bounding the current status, or nil when
// the status has none.
func expiryDeadline(m *types.Match) *time.Time {
	switch m.Status {
	case types.StatusPending:
		return m.ChallengeExpiresAt
	case types.StatusReady, types.StatusLobby:
		return m.JoinWindowExpiresAt
	default:
		return nil
	}
}

func (s *matchService) isOverdue(m *types.Match) bool {
	deadline := expiryDeadline(m)
	return deadline != nil && deadline.Before(s.clock.Now().UTC())
}

// expireOverdue is the lazy-expiry pre-step for accept and join. It runs
// before (and outside) the command's own transaction so the 410 handed back
// to the caller cannot roll the expiry back.
func (s *matchService) expireOverdue(dbc dbctx.Context, m *types.Match) error {
	if !s.isOverdue(m) {
		return nil
	}
	applied, err := s.ExpireMatch(dbc, m.ID)
	if err != nil {
		return err
	}
	if applied {
		return apierr.New(http.StatusGone, "expired", errs.ErrExpired)
	}
	// Lost a race with another command; the main transaction re-reads and
	// reports the row as it now stands.
	return nil
}

// decorate fills the derived read-model fields. A checkout suggestion is
// only meaningful during live play, for the player on throw.
func (s *matchService) decorate(m *types.Match) {
	if m == nil || m.Status != types.StatusInProgress || m.CurrentPlayerID == nil {
		return
	}
	if route, ok := scoring.SuggestCheckout(m.ScoreOf(*m.CurrentPlayerID)); ok {
		m.Checkout = route
	}
}

func (s *matchService) notifyChanged(m *types.Match) {
	if s.notifier == nil || m == nil {
		return
	}
	s.notifier.MatchChanged(m.ID, m.ChallengerID, m.ReceiverID)
}
