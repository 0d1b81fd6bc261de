package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestMatchStatusTransitions(t *testing.T) {
	allowed := map[MatchStatus][]MatchStatus{
		StatusPending:    {StatusReady, StatusExpired, StatusCancelled},
		StatusReady:      {StatusLobby, StatusExpired, StatusCancelled},
		StatusLobby:      {StatusInProgress, StatusExpired, StatusCancelled},
		StatusInProgress: {StatusCompleted},
	}
	all := []MatchStatus{
		StatusPending, StatusReady, StatusLobby, StatusInProgress,
		StatusCompleted, StatusExpired, StatusCancelled,
	}

	for _, from := range all {
		want := map[MatchStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != want[to] {
				t.Fatalf("CanTransitionTo(%s -> %s) = %v want %v", from, to, got, want[to])
			}
		}
	}
}

func TestMatchStatusClasses(t *testing.T) {
	cases := []struct {
		status   MatchStatus
		terminal bool
		active   bool
	}{
		{StatusPending, false, false},
		{StatusReady, false, true},
		{StatusLobby, false, true},
		{StatusInProgress, false, true},
		{StatusCompleted, true, false},
		{StatusExpired, true, false},
		{StatusCancelled, true, false},
	}
	for _, tc := range cases {
		if !tc.status.Valid() {
			t.Fatalf("%s should be a valid status", tc.status)
		}
		if got := tc.status.IsTerminal(); got != tc.terminal {
			t.Fatalf("IsTerminal(%s) = %v want %v", tc.status, got, tc.terminal)
		}
		if got := tc.status.IsActive(); got != tc.active {
			t.Fatalf("IsActive(%s) = %v want %v", tc.status, got, tc.active)
		}
	}

	if MatchStatus("paused").Valid() {
		t.Fatalf("unknown status should not validate")
	}
	if MatchStatus("").IsActive() || MatchStatus("").IsTerminal() {
		t.Fatalf("empty status should be neither active nor terminal")
	}
}

func TestMatchParticipantHelpers(t *testing.T) {
	challenger := uuid.New()
	receiver := uuid.New()
	m := &Match{ChallengerID: challenger, ReceiverID: receiver}

	if !m.HasParticipant(challenger) || !m.HasParticipant(receiver) {
		t.Fatalf("both participants should be recognized")
	}
	if m.HasParticipant(uuid.New()) {
		t.Fatalf("stranger should not be a participant")
	}
	if m.HasParticipant(uuid.Nil) {
		t.Fatalf("nil id should never be a participant")
	}

	if got := m.OtherParticipant(challenger); got != receiver {
		t.Fatalf("OtherParticipant(challenger) = %s want %s", got, receiver)
	}
	if got := m.OtherParticipant(receiver); got != challenger {
		t.Fatalf("OtherParticipant(receiver) = %s want %s", got, challenger)
	}
	if got := m.OtherParticipant(uuid.New()); got != uuid.Nil {
		t.Fatalf("OtherParticipant(stranger) = %s want nil uuid", got)
	}
}

func TestMatchJoinCounting(t *testing.T) {
	m := &Match{}
	if m.BothJoined() || m.JoinedCount() != 0 {
		t.Fatalf("fresh match: BothJoined=%v JoinedCount=%d", m.BothJoined(), m.JoinedCount())
	}
	m.ChallengerJoined = true
	if m.BothJoined() || m.JoinedCount() != 1 {
		t.Fatalf("one joined: BothJoined=%v JoinedCount=%d", m.BothJoined(), m.JoinedCount())
	}
	m.ReceiverJoined = true
	if !m.BothJoined() || m.JoinedCount() != 2 {
		t.Fatalf("both joined: BothJoined=%v JoinedCount=%d", m.BothJoined(), m.JoinedCount())
	}
}

func TestMatchScoreAndLegHelpers(t *testing.T) {
	challenger := uuid.New()
	receiver := uuid.New()
	m := &Match{
		ChallengerID:      challenger,
		ReceiverID:        receiver,
		ChallengerScore:   301,
		ReceiverScore:     120,
		ChallengerLegsWon: 2,
		ReceiverLegsWon:   1,
	}

	if got := m.ScoreOf(challenger); got != 301 {
		t.Fatalf("ScoreOf(challenger) = %d want 301", got)
	}
	if got := m.ScoreOf(receiver); got != 120 {
		t.Fatalf("ScoreOf(receiver) = %d want 120", got)
	}
	if got := m.LegsWonBy(challenger); got != 2 {
		t.Fatalf("LegsWonBy(challenger) = %d want 2", got)
	}
	if got := m.LegsWonBy(receiver); got != 1 {
		t.Fatalf("LegsWonBy(receiver) = %d want 1", got)
	}
}

func TestLegsNeeded(t *testing.T) {
	cases := []struct{ format, want int }{
		{1, 1},
		{3, 2},
		{5, 3},
		{7, 4},
	}
	for _, tc := range cases {
		m := &Match{MatchFormat: tc.format}
		if got := m.LegsNeeded(); got != tc.want {
			t.Fatalf("LegsNeeded(best of %d) = %d want %d", tc.format, got, tc.want)
		}
	}
}

func TestVisitNumberAdvancesPerRotation(t *testing.T) {
	cases := []struct{ turnIndex, want int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{6, 4},
	}
	for _, tc := range cases {
		m := &Match{TurnIndexInLeg: tc.turnIndex}
		if got := m.VisitNumber(); got != tc.want {
			t.Fatalf("VisitNumber(turn %d) = %d want %d", tc.turnIndex, got, tc.want)
		}
	}
}
