package match

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/types"
)

type MatchRepo interface {
	Create(dbc dbctx.Context, m *types.Match) (*types.Match, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Match, error)
	ListByParticipant(dbc dbctx.Context, playerID uuid.UUID) ([]*types.Match, error)
	// UpdateStateCAS applies updates to the row only if it still carries the
	// given version, bumping the version in the same statement. False means a
	// concurrent command won the race.
	UpdateStateCAS(dbc dbctx.Context, id uuid.UUID, version int, updates map[string]interface{}) (bool, error)
	ListDueChallengeExpiry(dbc dbctx.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	ListDueJoinExpiry(dbc dbctx.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	DeleteTerminalBefore(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return &matchRepo{
		db:  db,
		log: baseLog.With("repo", "MatchRepo"),
	}
}

func (r *matchRepo) Create(dbc dbctx.Context, m *types.Match) (*types.Match, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if m == nil {
		return nil, nil
	}
	// Postgres fills the id via uuid_generate_v4; sqlite has no default.
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *matchRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Match, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var m types.Match
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepo) ListByParticipant(dbc dbctx.Context, playerID uuid.UUID) ([]*types.Match, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Match
	if playerID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("challenger_id = ? OR receiver_id = ?", playerID, playerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *matchRepo) UpdateStateCAS(dbc dbctx.Context, id uuid.UUID, version int, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["version"] = gorm.Expr("version + 1")
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Match{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *matchRepo) ListDueChallengeExpiry(dbc dbctx.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Match{}).
		Where("status = ? AND challenge_expires_at IS NOT NULL AND challenge_expires_at < ?", types.StatusPending, cutoff).
		Order("challenge_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *matchRepo) ListDueJoinExpiry(dbc dbctx.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Match{}).
		Where("status IN ? AND join_window_expires_at IS NOT NULL AND join_window_expires_at < ?",
			[]types.MatchStatus{types.StatusReady, types.StatusLobby}, cutoff).
		Order("join_window_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *matchRepo) DeleteTerminalBefore(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("status IN ? AND updated_at < ?",
			[]types.MatchStatus{types.StatusCompleted, types.StatusExpired, types.StatusCancelled}, cutoff).
		Delete(&types.Match{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
