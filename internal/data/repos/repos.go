package repos

import (
	"github.com/dandarts/dandarts-backend/internal/data/repos/match"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type MatchRepo = match.MatchRepo
type ActiveMatchRepo = match.ActiveMatchRepo
type BlockRepo = match.BlockRepo

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return match.NewMatchRepo(db, baseLog)
}

func NewActiveMatchRepo(db *gorm.DB, baseLog *logger.Logger) ActiveMatchRepo {
	return match.NewActiveMatchRepo(db, baseLog)
}

func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return match.NewBlockRepo(db, baseLog)
}
