package db

import (
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Match lifecycle
		&types.Match{},
		&types.PlayerActiveMatch{},

		// Read model maintained by the identity system
		&types.PlayerBlock{},
	)
}
