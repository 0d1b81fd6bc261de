package scoring

// Rules is the per-variant scoring contract the match service consults. It
// is pure: the service hands it the pre-visit score and the recomputed dart
// total and applies the outcome itself.
type Rules interface {
	Key() string
	StartingScore() int
	// IsBust reports whether the visit leaves the score unplayable: below
	// zero, stranded on one, or on zero without a qualifying final dart.
	IsBust(preScore, visitTotal int, finalDartIsDouble bool) bool
	// IsWin reports whether the visit checks out the leg.
	IsWin(preScore, visitTotal int, finalDartIsDouble bool) bool
}

// x01Rules covers the countdown family (301, 501, ...): start at a fixed
// score, subtract each visit, finish on exactly zero. With double_out the
// final dart must be a double and a remaining score of one is dead.
type x01Rules struct {
	key           string
	startingScore int
	doubleOut     bool
}

func (r *x01Rules) Key() string        { return r.key }
func (r *x01Rules) StartingScore() int { return r.startingScore }

func (r *x01Rules) IsBust(preScore, visitTotal int, finalDartIsDouble bool) bool {
	remaining := preScore - visitTotal
	if remaining < 0 {
		return true
	}
	if !r.doubleOut {
		return false
	}
	if remaining == 1 {
		return true
	}
	return remaining == 0 && !finalDartIsDouble
}

func (r *x01Rules) IsWin(preScore, visitTotal int, finalDartIsDouble bool) bool {
	if preScore-visitTotal != 0 {
		return false
	}
	if r.doubleOut && !finalDartIsDouble {
		return false
	}
	return true
}
