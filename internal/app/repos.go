package app

import (
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/data/repos"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

type Repos struct {
	Match       repos.MatchRepo
	ActiveMatch repos.ActiveMatchRepo
	Block       repos.BlockRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Match:       repos.NewMatchRepo(db, log),
		ActiveMatch: repos.NewActiveMatchRepo(db, log),
		Block:       repos.NewBlockRepo(db, log),
	}
}
