package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dandarts/dandarts-backend/internal/types"
)

// SeedMatch creates a match in the given status with the field shape that
// status implies: pending rows carry a live challenge window, ready and lobby
// rows a live join window, in-progress rows a current player and leg scores.
func SeedMatch(tb testing.TB, ctx context.Context, tx *gorm.DB, challengerID, receiverID uuid.UUID, status types.MatchStatus) *types.Match {
	tb.Helper()
	now := time.Now().UTC()
	m := &types.Match{
		ID:           uuid.New(),
		Status:       status,
		ChallengerID: challengerID,
		ReceiverID:   receiverID,
		GameVariant:  "501",
		MatchFormat:  3,
		CurrentLeg:   1,
	}
	switch status {
	case types.StatusPending:
		m.ChallengeExpiresAt = PtrTime(now.Add(24 * time.Hour))
	case types.StatusReady:
		m.ChallengeExpiresAt = PtrTime(now.Add(24 * time.Hour))
		m.JoinWindowExpiresAt = PtrTime(now.Add(5 * time.Minute))
	case types.StatusLobby:
		m.ChallengeExpiresAt = PtrTime(now.Add(24 * time.Hour))
		m.JoinWindowExpiresAt = PtrTime(now.Add(5 * time.Minute))
		m.ChallengerJoined = true
	case types.StatusInProgress:
		m.ChallengerJoined = true
		m.ReceiverJoined = true
		m.CurrentPlayerID = PtrUUID(challengerID)
		m.ChallengerScore = 501
		m.ReceiverScore = 501
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed match: %v", err)
	}
	return m
}

func SeedClaim(tb testing.TB, ctx context.Context, tx *gorm.DB, playerID, matchID uuid.UUID, status types.MatchStatus) *types.PlayerActiveMatch {
	tb.Helper()
	c := &types.PlayerActiveMatch{
		PlayerID: playerID,
		MatchID:  matchID,
		Status:   status,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed claim: %v", err)
	}
	return c
}

func SeedBlock(tb testing.TB, ctx context.Context, tx *gorm.DB, blockerID, blockedID uuid.UUID) *types.PlayerBlock {
	tb.Helper()
	b := &types.PlayerBlock{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed block: %v", err)
	}
	return b
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
