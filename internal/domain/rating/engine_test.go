package rating

import (
	"math"
	"testing"
)

func TestDelta_EqualRatings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		gamesSelf int
		gamesOpp  int
		want      int
	}{
		{name: "clean sweep", gamesSelf: 2, gamesOpp: 0, want: 13},
		{name: "close win", gamesSelf: 2, gamesOpp: 1, want: 6},
		{name: "close loss", gamesSelf: 1, gamesOpp: 2, want: -6},
		{name: "swept", gamesSelf: 0, gamesOpp: 2, want: -12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Delta(250, 250, tc.gamesSelf, tc.gamesOpp, DefaultK); got != tc.want {
				t.Fatalf("unexpected delta: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestDelta_LoserGetsExactNegation(t *testing.T) {
	t.Parallel()

	winner := Delta(250, 250, 2, 0, DefaultK)
	if winner != 13 {
		t.Fatalf("unexpected winner delta: got=%d want=13", winner)
	}
	// Finalization applies -winner to the loser rather than recomputing,
	// so the pair always sums to zero.
	if loser := -winner; loser != -13 {
		t.Fatalf("unexpected loser delta: got=%d want=-13", loser)
	}
}

func TestDelta_ClampedToK(t *testing.T) {
	t.Parallel()

	if got := Delta(100, 5000, 2, 0, 10); got != 10 {
		t.Fatalf("expected clamp to k: got=%d want=10", got)
	}
	if got := Delta(5000, 100, 0, 2, 10); got != -10 {
		t.Fatalf("expected clamp to -k: got=%d want=-10", got)
	}
	if got := Delta(250, 250, 2, 0, 0); got != 13 {
		t.Fatalf("expected default k when k<=0: got=%d want=13", got)
	}
}

func TestExpectedScore(t *testing.T) {
	t.Parallel()

	if got := ExpectedScore(250, 250); got != 0.5 {
		t.Fatalf("unexpected expected score: got=%f want=0.5", got)
	}
	// 200 points ahead on a slope of 200 is a 10:1 favourite.
	if got := ExpectedScore(450, 250); math.Abs(got-10.0/11.0) > 1e-9 {
		t.Fatalf("unexpected expected score: got=%f want=%f", got, 10.0/11.0)
	}
}

func TestActualScore_UnexpectedTallyIsNeutral(t *testing.T) {
	t.Parallel()

	if got := ActualScore(3, 0); got != 0.5 {
		t.Fatalf("unexpected actual score: got=%f want=0.5", got)
	}
}

func TestDisplayed(t *testing.T) {
	t.Parallel()

	b := Bounds{Min: 100, Max: 600}
	if got := Displayed(50, b); got != 100 {
		t.Fatalf("unexpected displayed rating: got=%d want=100", got)
	}
	if got := Displayed(900, b); got != 600 {
		t.Fatalf("unexpected displayed rating: got=%d want=600", got)
	}
	if got := Displayed(321, Bounds{}); got != 321 {
		t.Fatalf("unexpected displayed rating with default bounds: got=%d want=321", got)
	}
}
