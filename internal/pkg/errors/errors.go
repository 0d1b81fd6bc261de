package errors

import "errors"

// Sentinels for every per-command match outcome. Services wrap these in an
// apierr.Error; callers branch with errors.Is.
var (
	// ErrInvalidParticipants rejects a challenge whose two sides are not
	// distinct players.
	ErrInvalidParticipants = errors.New("invalid participants")
	// ErrBlocked rejects a challenge between players with a block in either
	// direction.
	ErrBlocked = errors.New("blocked")
	// ErrNotFound covers both a missing match and a caller who is not a
	// participant of it.
	ErrNotFound = errors.New("match not found")
	// ErrAlreadyDecided rejects accepting a challenge that is no longer
	// pending.
	ErrAlreadyDecided = errors.New("challenge already decided")
	// ErrExpired rejects acting on a match whose time window has passed.
	ErrExpired = errors.New("match expired")
	// ErrConcurrencyLimitExceeded rejects a transition that would give a
	// player a second active match.
	ErrConcurrencyLimitExceeded = errors.New("active match limit exceeded")
	// ErrInvalidTransition rejects a command whose target state is not
	// reachable from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStaleState means a concurrent command advanced the match first;
	// callers re-fetch and re-decide, never retry blindly.
	ErrStaleState = errors.New("stale match state")
	// ErrNotYourTurn rejects a visit from anyone but the current player.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrMatchNotInProgress rejects a visit outside live play.
	ErrMatchNotInProgress = errors.New("match not in progress")
	// ErrDuplicateVisit rejects a visit for a turn index that is not the
	// open one and is not a detected replay.
	ErrDuplicateVisit = errors.New("visit already recorded for turn")

	// ErrInvalidVisit rejects structurally invalid dart payloads.
	ErrInvalidVisit = errors.New("invalid visit payload")
	// ErrUnknownVariant rejects a game variant the registry does not know.
	ErrUnknownVariant = errors.New("unknown game variant")
)
