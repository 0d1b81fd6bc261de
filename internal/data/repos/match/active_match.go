package match

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/types"
)

// ActiveMatchRepo manages the per-player claim rows behind the one-active-
// match rule. The player_id primary key is the enforcement: a second claim
// for the same player conflicts instead of inserting.
type ActiveMatchRepo interface {
	// Claim inserts a claim row for the player. False means the player
	// already holds a claim for some match.
	Claim(dbc dbctx.Context, playerID, matchID uuid.UUID, status types.MatchStatus) (bool, error)
	GetByPlayer(dbc dbctx.Context, playerID uuid.UUID) (*types.PlayerActiveMatch, error)
	UpdateStatusForMatch(dbc dbctx.Context, matchID uuid.UUID, status types.MatchStatus) error
	ReleaseForMatch(dbc dbctx.Context, matchID uuid.UUID) error
}

type activeMatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActiveMatchRepo(db *gorm.DB, baseLog *logger.Logger) ActiveMatchRepo {
	return &activeMatchRepo{
		db:  db,
		log: baseLog.With("repo", "ActiveMatchRepo"),
	}
}

func (r *activeMatchRepo) Claim(dbc dbctx.Context, playerID, matchID uuid.UUID, status types.MatchStatus) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if playerID == uuid.Nil || matchID == uuid.Nil {
		return false, nil
	}
	row := types.PlayerActiveMatch{
		PlayerID: playerID,
		MatchID:  matchID,
		Status:   status,
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *activeMatchRepo) GetByPlayer(dbc dbctx.Context, playerID uuid.UUID) (*types.PlayerActiveMatch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if playerID == uuid.Nil {
		return nil, nil
	}
	var row types.PlayerActiveMatch
	err := transaction.WithContext(dbc.Ctx).
		Where("player_id = ?", playerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *activeMatchRepo) UpdateStatusForMatch(dbc dbctx.Context, matchID uuid.UUID, status types.MatchStatus) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if matchID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PlayerActiveMatch{}).
		Where("match_id = ?", matchID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *activeMatchRepo) ReleaseForMatch(dbc dbctx.Context, matchID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if matchID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("match_id = ?", matchID).
		Delete(&types.PlayerActiveMatch{}).Error
}
