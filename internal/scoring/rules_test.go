package scoring

import (
	"errors"
	"testing"

	errs "github.com/dandarts/dandarts-backend/internal/pkg/errors"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

func TestX01DoubleOutBustAndWin(t *testing.T) {
	rules := &x01Rules{key: "501", startingScore: 501, doubleOut: true}

	cases := []struct {
		name        string
		preScore    int
		visitTotal  int
		finalDouble bool
		wantBust    bool
		wantWin     bool
	}{
		{
			name:       "ordinary scoring visit",
			preScore:   501,
			visitTotal: 180,
		},
		{
			name:       "overshoot busts",
			preScore:   40,
			visitTotal: 41,
			wantBust:   true,
		},
		{
			name:       "stranded on one busts",
			preScore:   40,
			visitTotal: 39,
			wantBust:   true,
		},
		{
			name:       "zero without a double busts",
			preScore:   40,
			visitTotal: 40,
			wantBust:   true,
		},
		{
			name:        "zero on a double wins",
			preScore:    40,
			visitTotal:  40,
			finalDouble: true,
			wantWin:     true,
		},
		{
			name:        "bull finish wins",
			preScore:    50,
			visitTotal:  50,
			finalDouble: true,
			wantWin:     true,
		},
		{
			name:       "two left stays playable",
			preScore:   40,
			visitTotal: 38,
		},
		{
			name:        "partial visit on a double does not win",
			preScore:    100,
			visitTotal:  40,
			finalDouble: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.IsBust(tc.preScore, tc.visitTotal, tc.finalDouble); got != tc.wantBust {
				t.Fatalf("IsBust(%d, %d, %v) = %v want %v", tc.preScore, tc.visitTotal, tc.finalDouble, got, tc.wantBust)
			}
			if got := rules.IsWin(tc.preScore, tc.visitTotal, tc.finalDouble); got != tc.wantWin {
				t.Fatalf("IsWin(%d, %d, %v) = %v want %v", tc.preScore, tc.visitTotal, tc.finalDouble, got, tc.wantWin)
			}
		})
	}
}

func TestX01StraightOut(t *testing.T) {
	rules := &x01Rules{key: "301-straight", startingScore: 301, doubleOut: false}

	if rules.IsBust(40, 39, false) {
		t.Fatalf("IsBust(40, 39, false) = true, one left is playable without double out")
	}
	if !rules.IsWin(40, 40, false) {
		t.Fatalf("IsWin(40, 40, false) = false, any finish wins without double out")
	}
	if !rules.IsBust(40, 41, false) {
		t.Fatalf("IsBust(40, 41, false) = false, overshoot always busts")
	}
}

func TestForVariant(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	defer log.Sync()

	for _, key := range []string{"301", "501"} {
		rules, err := ForVariant(log, key)
		if err != nil {
			t.Fatalf("ForVariant(%q): %v", key, err)
		}
		if rules.Key() != key {
			t.Fatalf("Key() = %q want %q", rules.Key(), key)
		}
	}

	rules, err := ForVariant(log, "501")
	if err != nil {
		t.Fatalf("ForVariant(501): %v", err)
	}
	if rules.StartingScore() != 501 {
		t.Fatalf("StartingScore() = %d want 501", rules.StartingScore())
	}

	if _, err := ForVariant(log, "cricket"); !errors.Is(err, errs.ErrUnknownVariant) {
		t.Fatalf("ForVariant(cricket) err = %v want ErrUnknownVariant", err)
	}
}

func TestVariantsSorted(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	defer log.Sync()

	keys, err := Variants(log)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(keys) < 2 {
		t.Fatalf("Variants returned %d keys, want at least 301 and 501", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("Variants not sorted: %v", keys)
		}
	}
}
