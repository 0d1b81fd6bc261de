package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dart is one thrown dart. Base 0 is a miss; 25 is the bull (single or
// double only — there is no treble bull).
type Dart struct {
	Base       int `json:"base"`
	Multiplier int `json:"multiplier"`
}

func (d Dart) Value() int { return d.Base * d.Multiplier }

func (d Dart) IsMiss() bool { return d.Base == 0 }

func (d Dart) IsDouble() bool { return d.Multiplier == 2 && d.Base != 0 }

func (d Dart) Validate() error {
	if d.Base == 0 {
		if d.Multiplier != 1 {
			return fmt.Errorf("miss must have multiplier 1, got %d", d.Multiplier)
		}
		return nil
	}
	if d.Multiplier < 1 || d.Multiplier > 3 {
		return fmt.Errorf("multiplier out of range: %d", d.Multiplier)
	}
	if d.Base == 25 {
		if d.Multiplier == 3 {
			return fmt.Errorf("no treble bull")
		}
		return nil
	}
	if d.Base < 1 || d.Base > 20 {
		return fmt.Errorf("base out of range: %d", d.Base)
	}
	return nil
}

// Visit is one player's turn of up to three darts, folded into the match by
// the service and kept only as the last_visit display record.
type Visit struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Leg         int       `json:"leg"`
	TurnIndex   int       `json:"turn_index"`
	Darts       []Dart    `json:"darts"`
	Total       int       `json:"total"`
	ScoreBefore int       `json:"score_before"`
	ScoreAfter  int       `json:"score_after"`
	Bust        bool      `json:"bust"`
	ThrownAt    time.Time `json:"thrown_at"`
}

// ValidateDarts checks the structural rules for a submitted visit: one to
// three darts, each individually legal. A turn with no throws does not
// exist; misses are recorded explicitly as base 0.
func ValidateDarts(darts []Dart) error {
	if len(darts) == 0 {
		return fmt.Errorf("visit has no darts")
	}
	if len(darts) > 3 {
		return fmt.Errorf("visit has %d darts, max 3", len(darts))
	}
	for i, d := range darts {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("dart %d: %w", i+1, err)
		}
	}
	return nil
}

// DartsTotal sums the dart values; the service never trusts a client total.
func DartsTotal(darts []Dart) int {
	total := 0
	for _, d := range darts {
		total += d.Value()
	}
	return total
}

// SameDarts reports whether two throws are the identical ordered sequence.
// Used for replay detection on retried saves.
func SameDarts(a, b []Dart) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v *Visit) ToJSON() (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// VisitFromJSON decodes a stored last_visit column; nil JSON yields nil.
func VisitFromJSON(raw datatypes.JSON) (*Visit, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v Visit
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
