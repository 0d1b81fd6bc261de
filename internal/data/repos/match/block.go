package match

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/pkg/dbctx"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"github.com/dandarts/dandarts-backend/internal/types"
)

// BlockRepo reads the block list the identity system maintains. A block in
// either direction keeps the pair from challenging each other.
type BlockRepo interface {
	IsBlocked(dbc dbctx.Context, a, b uuid.UUID) (bool, error)
}

type blockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return &blockRepo{
		db:  db,
		log: baseLog.With("repo", "BlockRepo"),
	}
}

func (r *blockRepo) IsBlocked(dbc dbctx.Context, a, b uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if a == uuid.Nil || b == uuid.Nil {
		return false, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.PlayerBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
