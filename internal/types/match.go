package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchStatus is the authoritative lifecycle state of a match. Transitions
// follow a fixed directed graph (CanTransitionTo); terminal statuses are
// never exited.
type MatchStatus string

const (
	StatusPending    MatchStatus = "pending"
	StatusReady      MatchStatus = "ready"
	StatusLobby      MatchStatus = "lobby"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusExpired    MatchStatus = "expired"
	StatusCancelled  MatchStatus = "cancelled"
)

var statusGraph = map[MatchStatus][]MatchStatus{
	StatusPending:    {StatusReady, StatusExpired, StatusCancelled},
	StatusReady:      {StatusLobby, StatusExpired, StatusCancelled},
	StatusLobby:      {StatusInProgress, StatusExpired, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusExpired:    {},
	StatusCancelled:  {},
}

func (s MatchStatus) Valid() bool {
	_, ok := statusGraph[s]
	return ok
}

func (s MatchStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the status holds a player's single-active-match
// claim. Lobby counts: it is the joined sub-phase of an accepted challenge.
func (s MatchStatus) IsActive() bool {
	switch s {
	case StatusReady, StatusLobby, StatusInProgress:
		return true
	default:
		return false
	}
}

func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, t := range statusGraph[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Match struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status              MatchStatus    `gorm:"column:status;not null;index;index:idx_match_challenger_status,priority:2;index:idx_match_receiver_status,priority:2" json:"status"`
	ChallengerID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_match_challenger_status,priority:1" json:"challenger_id"`
	ReceiverID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_match_receiver_status,priority:1" json:"receiver_id"`
	GameVariant         string         `gorm:"column:game_variant;not null" json:"game_variant"`
	MatchFormat         int            `gorm:"column:match_format;not null" json:"match_format"`
	CurrentPlayerID     *uuid.UUID     `gorm:"type:uuid;column:current_player_id" json:"current_player_id,omitempty"`
	CurrentLeg          int            `gorm:"column:current_leg;not null;default:1" json:"current_leg"`
	TurnIndexInLeg      int            `gorm:"column:turn_index_in_leg;not null;default:0" json:"turn_index_in_leg"`
	ChallengerScore     int            `gorm:"column:challenger_score;not null;default:0" json:"challenger_score"`
	ReceiverScore       int            `gorm:"column:receiver_score;not null;default:0" json:"receiver_score"`
	ChallengerLegsWon   int            `gorm:"column:challenger_legs_won;not null;default:0" json:"challenger_legs_won"`
	ReceiverLegsWon     int            `gorm:"column:receiver_legs_won;not null;default:0" json:"receiver_legs_won"`
	ChallengerJoined    bool           `gorm:"column:challenger_joined;not null;default:false" json:"challenger_joined"`
	ReceiverJoined      bool           `gorm:"column:receiver_joined;not null;default:false" json:"receiver_joined"`
	LastVisit           datatypes.JSON `gorm:"column:last_visit;type:jsonb" json:"last_visit,omitempty"`
	ChallengeExpiresAt  *time.Time     `gorm:"column:challenge_expires_at;index" json:"challenge_expires_at,omitempty"`
	JoinWindowExpiresAt *time.Time     `gorm:"column:join_window_expires_at;index" json:"join_window_expires_at,omitempty"`
	WinnerID            *uuid.UUID     `gorm:"type:uuid;column:winner_id" json:"winner_id,omitempty"`
	Version             int            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt           time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Read-model fields computed per request, never persisted.
	Disabled bool   `gorm:"-" json:"disabled"`
	Checkout []Dart `gorm:"-" json:"checkout,omitempty"`
}

func (Match) TableName() string { return "match" }

func (m *Match) HasParticipant(id uuid.UUID) bool {
	return id != uuid.Nil && (m.ChallengerID == id || m.ReceiverID == id)
}

// OtherParticipant returns the opponent of id, or uuid.Nil when id is not a
// participant.
func (m *Match) OtherParticipant(id uuid.UUID) uuid.UUID {
	switch id {
	case m.ChallengerID:
		return m.ReceiverID
	case m.ReceiverID:
		return m.ChallengerID
	default:
		return uuid.Nil
	}
}

func (m *Match) BothJoined() bool {
	return m.ChallengerJoined && m.ReceiverJoined
}

func (m *Match) JoinedCount() int {
	n := 0
	if m.ChallengerJoined {
		n++
	}
	if m.ReceiverJoined {
		n++
	}
	return n
}

// ScoreOf returns the remaining countdown score of the given participant for
// the current leg.
func (m *Match) ScoreOf(id uuid.UUID) int {
	if id == m.ChallengerID {
		return m.ChallengerScore
	}
	return m.ReceiverScore
}

func (m *Match) LegsWonBy(id uuid.UUID) int {
	if id == m.ChallengerID {
		return m.ChallengerLegsWon
	}
	return m.ReceiverLegsWon
}

// LegsNeeded is the number of leg wins that decides the match.
func (m *Match) LegsNeeded() int {
	return m.MatchFormat/2 + 1
}

// VisitNumber is the shared 1-based visit counter both players see. It
// advances once per full rotation, never on a single player's save, and
// restarts at 1 each leg.
func (m *Match) VisitNumber() int {
	return m.TurnIndexInLeg/2 + 1
}
