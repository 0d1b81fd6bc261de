package scoring

import (
	"sort"

	"github.com/dandarts/dandarts-backend/internal/types"
)

// setupDarts holds every legal scoring dart sorted by descending value, used
// to search checkout routes greedily. Ties prefer the lower multiplier so
// suggestions lean on singles where the value allows it.
var setupDarts = buildSetupDarts()

func buildSetupDarts() []types.Dart {
	darts := make([]types.Dart, 0, 62)
	for base := 1; base <= 20; base++ {
		for mult := 1; mult <= 3; mult++ {
			darts = append(darts, types.Dart{Base: base, Multiplier: mult})
		}
	}
	darts = append(darts, types.Dart{Base: 25, Multiplier: 1}, types.Dart{Base: 25, Multiplier: 2})
	sort.SliceStable(darts, func(i, j int) bool {
		if darts[i].Value() != darts[j].Value() {
			return darts[i].Value() > darts[j].Value()
		}
		return darts[i].Multiplier < darts[j].Multiplier
	})
	return darts
}

// finishingDouble returns the dart that checks out the given score in one
// throw, if such a double exists.
func finishingDouble(score int) (types.Dart, bool) {
	if score == 50 {
		return types.Dart{Base: 25, Multiplier: 2}, true
	}
	if score >= 2 && score <= 40 && score%2 == 0 {
		return types.Dart{Base: score / 2, Multiplier: 2}, true
	}
	return types.Dart{}, false
}

// SuggestCheckout returns a route of at most three darts that finishes the
// remaining score on a double, or false when no such route exists. Scores
// above 170 and the dead numbers in between (169, 168, 166, 165, 163, 162,
// 159) have no route and return false.
func SuggestCheckout(remaining int) ([]types.Dart, bool) {
	if remaining < 2 || remaining > 170 {
		return nil, false
	}
	if d, ok := finishingDouble(remaining); ok {
		return []types.Dart{d}, true
	}
	for _, first := range setupDarts {
		if d, ok := finishingDouble(remaining - first.Value()); ok {
			return []types.Dart{first, d}, true
		}
	}
	for _, first := range setupDarts {
		rest := remaining - first.Value()
		if rest < 3 {
			continue
		}
		for _, second := range setupDarts {
			if d, ok := finishingDouble(rest - second.Value()); ok {
				return []types.Dart{first, second, d}, true
			}
		}
	}
	return nil, false
}
