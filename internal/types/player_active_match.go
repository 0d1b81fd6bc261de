package types

import (
	"time"

	"github.com/google/uuid"
)

// PlayerActiveMatch is the per-player claim that enforces the single-active-
// match invariant at the database. The primary key on player_id makes a
// second concurrent claim impossible regardless of interleaving; rows exist
// only while the player's match is ready, lobby, or in_progress.
type PlayerActiveMatch struct {
	PlayerID  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"player_id"`
	MatchID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"match_id"`
	Status    MatchStatus `gorm:"column:status;not null" json:"status"`
	CreatedAt time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (PlayerActiveMatch) TableName() string { return "player_active_match" }
