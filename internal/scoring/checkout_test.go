package scoring

import (
	"testing"

	"github.com/dandarts/dandarts-backend/internal/types"
)

func TestSuggestCheckoutRoutes(t *testing.T) {
	cases := []struct {
		name      string
		remaining int
		wantRoute bool
	}{
		{name: "two is the lowest finish", remaining: 2, wantRoute: true},
		{name: "one is dead", remaining: 1},
		{name: "zero has nothing to finish", remaining: 0},
		{name: "forty", remaining: 40, wantRoute: true},
		{name: "bull finish", remaining: 50, wantRoute: true},
		{name: "odd score needs a setup dart", remaining: 39, wantRoute: true},
		{name: "big finish", remaining: 170, wantRoute: true},
		{name: "above the maximum", remaining: 171},
		{name: "one sixty nine is a bogey", remaining: 169},
		{name: "one sixty eight is a bogey", remaining: 168},
		{name: "one sixty six is a bogey", remaining: 166},
		{name: "one sixty five is a bogey", remaining: 165},
		{name: "one sixty three is a bogey", remaining: 163},
		{name: "one sixty two is a bogey", remaining: 162},
		{name: "one fifty nine is a bogey", remaining: 159},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			route, ok := SuggestCheckout(tc.remaining)
			if ok != tc.wantRoute {
				t.Fatalf("SuggestCheckout(%d) ok = %v want %v", tc.remaining, ok, tc.wantRoute)
			}
			if !ok {
				if route != nil {
					t.Fatalf("SuggestCheckout(%d) returned darts without a route", tc.remaining)
				}
				return
			}
			assertLegalRoute(t, tc.remaining, route)
		})
	}
}

func TestSuggestCheckoutSpecificRoutes(t *testing.T) {
	cases := []struct {
		remaining int
		want      []types.Dart
	}{
		{remaining: 40, want: []types.Dart{{Base: 20, Multiplier: 2}}},
		{remaining: 50, want: []types.Dart{{Base: 25, Multiplier: 2}}},
		{remaining: 100, want: []types.Dart{{Base: 20, Multiplier: 3}, {Base: 20, Multiplier: 2}}},
		{remaining: 170, want: []types.Dart{{Base: 20, Multiplier: 3}, {Base: 20, Multiplier: 3}, {Base: 25, Multiplier: 2}}},
		{remaining: 167, want: []types.Dart{{Base: 20, Multiplier: 3}, {Base: 19, Multiplier: 3}, {Base: 25, Multiplier: 2}}},
	}

	for _, tc := range cases {
		route, ok := SuggestCheckout(tc.remaining)
		if !ok {
			t.Fatalf("SuggestCheckout(%d) found no route", tc.remaining)
		}
		if len(route) != len(tc.want) {
			t.Fatalf("SuggestCheckout(%d) = %v want %v", tc.remaining, route, tc.want)
		}
		for i := range route {
			if route[i] != tc.want[i] {
				t.Fatalf("SuggestCheckout(%d) = %v want %v", tc.remaining, route, tc.want)
			}
		}
	}
}

// Every score from 2 to 170 either has a legal double-out route or is one of
// the seven dead numbers.
func TestSuggestCheckoutFullSweep(t *testing.T) {
	bogeys := map[int]bool{159: true, 162: true, 163: true, 165: true, 166: true, 168: true, 169: true}

	for remaining := 2; remaining <= 170; remaining++ {
		route, ok := SuggestCheckout(remaining)
		if bogeys[remaining] {
			if ok {
				t.Fatalf("SuggestCheckout(%d) = %v, bogey numbers have no route", remaining, route)
			}
			continue
		}
		if !ok {
			t.Fatalf("SuggestCheckout(%d) found no route", remaining)
		}
		assertLegalRoute(t, remaining, route)
	}
}

func assertLegalRoute(t *testing.T, remaining int, route []types.Dart) {
	t.Helper()
	if len(route) == 0 || len(route) > 3 {
		t.Fatalf("route for %d has %d darts", remaining, len(route))
	}
	total := 0
	for _, d := range route {
		if err := d.Validate(); err != nil {
			t.Fatalf("route for %d contains illegal dart %+v: %v", remaining, d, err)
		}
		total += d.Value()
	}
	if total != remaining {
		t.Fatalf("route for %d totals %d", remaining, total)
	}
	if last := route[len(route)-1]; !last.IsDouble() {
		t.Fatalf("route for %d ends on %+v, want a double", remaining, last)
	}
}
