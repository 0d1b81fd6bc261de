package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/types"
)

func dart(base, multiplier int) types.Dart {
	return types.Dart{Base: base, Multiplier: multiplier}
}

func TestSaveVisitGates(t *testing.T) {
	t.Run("stranger gets not found", func(t *testing.T) {
		h := newMatchHarness(t)
		m := h.seedInProgress(t, uuid.New(), uuid.New(), "501", 3, 501, 501)
		_, err := h.svc.SaveVisit(h.dbc, m.ID, uuid.New(), 0, []types.Dart{dart(20, 1)})
		assertAPIError(t, err, 404, "match_not_found")
	})

	t.Run("status gate precedes payload checks", func(t *testing.T) {
		h := newMatchHarness(t)
		a, b := uuid.New(), uuid.New()
		m, err := h.svc.CreateChallenge(h.dbc, a, b, "501", 3)
		if err != nil {
			t.Fatalf("CreateChallenge: %v", err)
		}
		// Four darts would be invalid, but the pending status answers first.
		_, err = h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 1), dart(20, 1), dart(20, 1), dart(20, 1)})
		assertAPIError(t, err, 409, "match_not_in_progress")
	})

	t.Run("opponent out of turn", func(t *testing.T) {
		h := newMatchHarness(t)
		a, b := uuid.New(), uuid.New()
		m := h.seedInProgress(t, a, b, "501", 3, 501, 501)
		_, err := h.svc.SaveVisit(h.dbc, m.ID, b, 0, []types.Dart{dart(20, 1)})
		assertAPIError(t, err, 403, "not_your_turn")
	})

	t.Run("wrong turn index", func(t *testing.T) {
		h := newMatchHarness(t)
		a, b := uuid.New(), uuid.New()
		m := h.seedInProgress(t, a, b, "501", 3, 501, 501)
		_, err := h.svc.SaveVisit(h.dbc, m.ID, a, 5, []types.Dart{dart(20, 1)})
		assertAPIError(t, err, 409, "duplicate_visit")
	})

	badPayloads := []struct {
		name  string
		darts []types.Dart
	}{
		{"no darts", nil},
		{"four darts", []types.Dart{dart(20, 1), dart(20, 1), dart(20, 1), dart(20, 1)}},
		{"base out of range", []types.Dart{dart(21, 1)}},
		{"treble bull", []types.Dart{dart(25, 3)}},
		{"zero multiplier", []types.Dart{dart(20, 0)}},
		{"scored miss", []types.Dart{dart(0, 2)}},
	}
	for _, tc := range badPayloads {
		t.Run(tc.name, func(t *testing.T) {
			h := newMatchHarness(t)
			a, b := uuid.New(), uuid.New()
			m := h.seedInProgress(t, a, b, "501", 3, 501, 501)
			_, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, tc.darts)
			assertAPIError(t, err, 400, "invalid_visit")
		})
	}
}

func TestSaveVisitScoresAndAdvancesTurn(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	m := h.seedInProgress(t, a, b, "501", 3, 501, 501)

	out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 3), dart(20, 3), dart(20, 3)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	if out.ChallengerScore != 321 {
		t.Fatalf("challenger score: want 321 got %d", out.ChallengerScore)
	}
	if out.ReceiverScore != 501 {
		t.Fatalf("receiver score must be untouched, got %d", out.ReceiverScore)
	}
	if out.TurnIndexInLeg != 1 {
		t.Fatalf("turn index: want 1 got %d", out.TurnIndexInLeg)
	}
	if out.CurrentPlayerID == nil || *out.CurrentPlayerID != b {
		t.Fatalf("turn must pass to the opponent, got %v", out.CurrentPlayerID)
	}
	if out.VisitNumber() != 1 {
		t.Fatalf("visit number: want 1 got %d", out.VisitNumber())
	}

	lv, err := types.VisitFromJSON(out.LastVisit)
	if err != nil {
		t.Fatalf("VisitFromJSON: %v", err)
	}
	if lv == nil || lv.PlayerID != a || lv.Leg != 1 || lv.TurnIndex != 0 {
		t.Fatalf("last visit header: %+v", lv)
	}
	if lv.Total != 180 || lv.ScoreBefore != 501 || lv.ScoreAfter != 321 || lv.Bust {
		t.Fatalf("last visit fold: %+v", lv)
	}
	if !lv.ThrownAt.Equal(h.start) {
		t.Fatalf("thrown at: want %v got %v", h.start, lv.ThrownAt)
	}
	if h.notifier.count() != 1 {
		t.Fatalf("save must notify once, got %d", h.notifier.count())
	}

	out, err = h.svc.SaveVisit(h.dbc, m.ID, b, 1, []types.Dart{dart(20, 1), dart(5, 1), dart(1, 1)})
	if err != nil {
		t.Fatalf("second SaveVisit: %v", err)
	}
	if out.ReceiverScore != 475 {
		t.Fatalf("receiver score: want 475 got %d", out.ReceiverScore)
	}
	if out.TurnIndexInLeg != 2 || out.VisitNumber() != 2 {
		t.Fatalf("shared visit counter: turn=%d visit=%d", out.TurnIndexInLeg, out.VisitNumber())
	}
	if out.CurrentPlayerID == nil || *out.CurrentPlayerID != a {
		t.Fatalf("turn must rotate back, got %v", out.CurrentPlayerID)
	}
}

func TestSaveVisitBustAndMissOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		preScore  int
		darts     []types.Dart
		wantBust  bool
		wantScore int
	}{
		{"overshoot below zero", 32, []types.Dart{dart(20, 3)}, true, 32},
		{"stranded on one", 33, []types.Dart{dart(16, 2)}, true, 33},
		{"zero without a double", 40, []types.Dart{dart(20, 1), dart(20, 1)}, true, 40},
		{"double down to two is playable", 42, []types.Dart{dart(20, 2)}, false, 2},
		{"three misses score nothing", 501, []types.Dart{dart(0, 1), dart(0, 1), dart(0, 1)}, false, 501},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newMatchHarness(t)
			a, b := uuid.New(), uuid.New()
			m := h.seedInProgress(t, a, b, "501", 3, tc.preScore, 501)

			out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, tc.darts)
			if err != nil {
				t.Fatalf("SaveVisit: %v", err)
			}
			if out.ChallengerScore != tc.wantScore {
				t.Fatalf("score: want %d got %d", tc.wantScore, out.ChallengerScore)
			}
			if out.TurnIndexInLeg != 1 {
				t.Fatalf("the turn is consumed either way, turn index got %d", out.TurnIndexInLeg)
			}
			if out.CurrentPlayerID == nil || *out.CurrentPlayerID != b {
				t.Fatalf("turn must pass on, got %v", out.CurrentPlayerID)
			}
			lv, err := types.VisitFromJSON(out.LastVisit)
			if err != nil {
				t.Fatalf("VisitFromJSON: %v", err)
			}
			if lv.Bust != tc.wantBust {
				t.Fatalf("bust flag: want %v got %v", tc.wantBust, lv.Bust)
			}
			if lv.ScoreBefore != tc.preScore || lv.ScoreAfter != tc.wantScore {
				t.Fatalf("visit scores: %+v", lv)
			}
		})
	}
}

func TestSaveVisitWinsLegAndResetsForNext(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	m := h.seedInProgress(t, a, b, "301", 3, 40, 100)

	out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 2)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	if out.Status != types.StatusInProgress {
		t.Fatalf("mid-match leg win must stay in_progress, got %s", out.Status)
	}
	if out.ChallengerLegsWon != 1 || out.ReceiverLegsWon != 0 {
		t.Fatalf("legs: %d/%d", out.ChallengerLegsWon, out.ReceiverLegsWon)
	}
	if out.CurrentLeg != 2 || out.TurnIndexInLeg != 0 {
		t.Fatalf("leg counters: leg=%d turn=%d", out.CurrentLeg, out.TurnIndexInLeg)
	}
	if out.ChallengerScore != 301 || out.ReceiverScore != 301 {
		t.Fatalf("scores must reset for the new leg, got %d/%d", out.ChallengerScore, out.ReceiverScore)
	}
	if out.CurrentPlayerID == nil || *out.CurrentPlayerID != b {
		t.Fatalf("receiver opens the even leg, got %v", out.CurrentPlayerID)
	}
	lv, err := types.VisitFromJSON(out.LastVisit)
	if err != nil {
		t.Fatalf("VisitFromJSON: %v", err)
	}
	if lv.Leg != 1 || lv.ScoreAfter != 0 || lv.Bust {
		t.Fatalf("winning visit record: %+v", lv)
	}
	version := out.Version
	notified := h.notifier.count()

	// A retried save of the leg-winning visit lands after the counters moved
	// on; it must read as already applied, not as a new throw.
	out, err = h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 2)})
	if err != nil {
		t.Fatalf("retried leg-winning SaveVisit: %v", err)
	}
	if out.CurrentLeg != 2 || out.Version != version {
		t.Fatalf("replay must not move the match: leg=%d version=%d", out.CurrentLeg, out.Version)
	}
	if h.notifier.count() != notified {
		t.Fatalf("replay must not notify, got %d want %d", h.notifier.count(), notified)
	}
}

func TestSaveVisitWinsBestOfOneImmediately(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	m := h.seedInProgress(t, a, b, "301", 1, 40, 301)

	out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 2)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	if out.Status != types.StatusCompleted {
		t.Fatalf("one leg decides a best-of-1, got %s", out.Status)
	}
	if out.WinnerID == nil || *out.WinnerID != a {
		t.Fatalf("winner: got %v", out.WinnerID)
	}
	if out.ChallengerLegsWon != 1 || out.CurrentLeg != 1 {
		t.Fatalf("counters after the only leg: legs=%d leg=%d", out.ChallengerLegsWon, out.CurrentLeg)
	}
}

func TestSaveVisitWinsMatch(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	cur := a
	m := &types.Match{
		ID:                uuid.New(),
		Status:            types.StatusInProgress,
		ChallengerID:      a,
		ReceiverID:        b,
		GameVariant:       "501",
		MatchFormat:       3,
		CurrentPlayerID:   &cur,
		CurrentLeg:        2,
		TurnIndexInLeg:    6,
		ChallengerScore:   50,
		ReceiverScore:     120,
		ChallengerLegsWon: 1,
		ChallengerJoined:  true,
		ReceiverJoined:    true,
	}
	h.matches.put(m)
	h.claims.put(&types.PlayerActiveMatch{PlayerID: a, MatchID: m.ID, Status: types.StatusInProgress})
	h.claims.put(&types.PlayerActiveMatch{PlayerID: b, MatchID: m.ID, Status: types.StatusInProgress})

	out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 6, []types.Dart{dart(25, 2)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	if out.Status != types.StatusCompleted {
		t.Fatalf("status: want completed got %s", out.Status)
	}
	if out.WinnerID == nil || *out.WinnerID != a {
		t.Fatalf("winner: got %v", out.WinnerID)
	}
	if out.ChallengerLegsWon != 2 {
		t.Fatalf("legs won: want 2 got %d", out.ChallengerLegsWon)
	}
	if out.CurrentPlayerID != nil {
		t.Fatalf("no one is on throw after completion, got %v", out.CurrentPlayerID)
	}
	if out.ChallengerScore != 0 {
		t.Fatalf("winning score: want 0 got %d", out.ChallengerScore)
	}
	for _, playerID := range []uuid.UUID{a, b} {
		claim, err := h.claims.GetByPlayer(h.dbc, playerID)
		if err != nil {
			t.Fatalf("GetByPlayer: %v", err)
		}
		if claim != nil {
			t.Fatalf("claims must be released on completion, %s holds %+v", playerID, claim)
		}
	}
	if h.notifier.count() != 1 {
		t.Fatalf("notify count: want 1 got %d", h.notifier.count())
	}
	version := out.Version

	// The retried match-winning save reads as success even though the match
	// is no longer in progress.
	out, err = h.svc.SaveVisit(h.dbc, m.ID, a, 6, []types.Dart{dart(25, 2)})
	if err != nil {
		t.Fatalf("retried match-winning SaveVisit: %v", err)
	}
	if out.Status != types.StatusCompleted || out.Version != version {
		t.Fatalf("replay changed the match: status=%s version=%d", out.Status, out.Version)
	}
	if h.notifier.count() != 1 {
		t.Fatalf("replay must not notify, got %d", h.notifier.count())
	}

	// Anything that is not the recorded retry conflicts.
	_, err = h.svc.SaveVisit(h.dbc, m.ID, a, 6, []types.Dart{dart(20, 2)})
	assertAPIError(t, err, 409, "match_not_in_progress")
	_, err = h.svc.SaveVisit(h.dbc, m.ID, b, 7, []types.Dart{dart(20, 2)})
	assertAPIError(t, err, 409, "match_not_in_progress")
}

func TestSaveVisitReplayWindowIsLastVisitOnly(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	m := h.seedInProgress(t, a, b, "501", 3, 501, 501)

	first, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 1), dart(20, 1), dart(20, 1)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}

	// Immediate retry is the replay case.
	replayed, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 1), dart(20, 1), dart(20, 1)})
	if err != nil {
		t.Fatalf("replayed SaveVisit: %v", err)
	}
	if replayed.Version != first.Version || replayed.TurnIndexInLeg != 1 {
		t.Fatalf("replay must not advance: version=%d turn=%d", replayed.Version, replayed.TurnIndexInLeg)
	}
	if h.notifier.count() != 1 {
		t.Fatalf("replay must not notify, got %d", h.notifier.count())
	}

	// Once the opponent throws, the old save is no longer the stored visit
	// and the retry surfaces as a conflict instead.
	if _, err := h.svc.SaveVisit(h.dbc, m.ID, b, 1, []types.Dart{dart(1, 1)}); err != nil {
		t.Fatalf("opponent SaveVisit: %v", err)
	}
	_, err = h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 1), dart(20, 1), dart(20, 1)})
	assertAPIError(t, err, 409, "duplicate_visit")
}

func TestSaveVisitPopulatesCheckout(t *testing.T) {
	h := newMatchHarness(t)
	a, b := uuid.New(), uuid.New()
	m := h.seedInProgress(t, a, b, "501", 3, 140, 170)

	// A banks 40, leaving 100; B is next with 170 on the board.
	out, err := h.svc.SaveVisit(h.dbc, m.ID, a, 0, []types.Dart{dart(20, 2)})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	want := []types.Dart{dart(20, 3), dart(20, 3), dart(25, 2)}
	if len(out.Checkout) != len(want) {
		t.Fatalf("checkout for 170: want %v got %v", want, out.Checkout)
	}
	for i := range want {
		if out.Checkout[i] != want[i] {
			t.Fatalf("checkout for 170: want %v got %v", want, out.Checkout)
		}
	}

	got, err := h.svc.GetMatch(h.dbc, m.ID, a)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if len(got.Checkout) != len(want) {
		t.Fatalf("fetch checkout: want %v got %v", want, got.Checkout)
	}
}
