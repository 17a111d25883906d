package rating

import "math"

const (
	// Default is the hidden rating assigned on first reference.
	Default = 250
	// DefaultK caps the per-pairing swing.
	DefaultK = 25
	// slope is the logistic scale. Smaller than the classic 400 so moderate
	// gaps still move ratings.
	slope = 200.0
)

// Bounds is the public display range for hidden ratings.
type Bounds struct {
	Min int
	Max int
}

func DefaultBounds() Bounds {
	return Bounds{Min: 100, Max: 600}
}

// Displayed clamps a hidden rating into b. A zero Bounds falls back to the default range.
func Displayed(hidden int, b Bounds) int {
	if b.Min == 0 && b.Max == 0 {
		b = DefaultBounds()
	}
	return clamp(hidden, b.Min, b.Max)
}

// ExpectedScore is the probability-like expectation for self against opp.
func ExpectedScore(self, opp int) float64 {
	return 1 / (1 + math.Pow(10, -float64(self-opp)/slope))
}

// ActualScore maps a best-of-3 tally to a score in [0,1].
func ActualScore(gamesSelf, gamesOpp int) float64 {
	switch {
	case gamesSelf == 2 && gamesOpp == 0:
		return 1
	case gamesSelf == 2 && gamesOpp == 1:
		return 0.75
	case gamesSelf == 1 && gamesOpp == 2:
		return 0.25
	case gamesSelf == 0 && gamesOpp == 2:
		return 0
	default:
		return 0.5
	}
}

// Delta is the rating change for self. The opponent's change is -Delta.
// Rounding is half-up so a 12.5 swing becomes 13.
func Delta(self, opp, gamesSelf, gamesOpp, k int) int {
	if k <= 0 {
		k = DefaultK
	}
	raw := float64(k) * (ActualScore(gamesSelf, gamesOpp) - ExpectedScore(self, opp))
	return clamp(int(math.Floor(raw+0.5)), -k, k)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
