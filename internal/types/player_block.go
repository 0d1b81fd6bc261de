package types

import (
	"time"

	"github.com/google/uuid"
)

// PlayerBlock is a read model owned by the external identity/social system.
// The lifecycle service only consults it when a challenge is created; it
// never writes these rows.
type PlayerBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_player_block_pair,priority:1" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_player_block_pair,priority:2" json:"blocked_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PlayerBlock) TableName() string { return "player_block" }
