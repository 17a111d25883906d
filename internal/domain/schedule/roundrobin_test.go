package schedule

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundRobin_FourTeams(t *testing.T) {
	t.Parallel()

	got := RoundRobin([]string{"a", "b", "c", "d"})
	want := []Round{
		{{TeamA: "a", TeamB: "d"}, {TeamA: "b", TeamB: "c"}},
		{{TeamA: "c", TeamB: "a"}, {TeamA: "b", TeamB: "d"}},
		{{TeamA: "a", TeamB: "b"}, {TeamA: "c", TeamB: "d"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected schedule (-want +got):\n%s", diff)
	}
}

func TestRoundRobin_OddCountDropsBye(t *testing.T) {
	t.Parallel()

	got := RoundRobin([]string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("unexpected round count: got=%d want=3", len(got))
	}
	for i, round := range got {
		if len(round) != 1 {
			t.Fatalf("round %d: expected one pair after bye drop, got %d", i, len(round))
		}
		for _, p := range round {
			if p.TeamA == Bye || p.TeamB == Bye {
				t.Fatalf("round %d contains bye placeholder", i)
			}
		}
	}
}

func TestRoundRobin_FewerThanTwoTeams(t *testing.T) {
	t.Parallel()

	if got := RoundRobin(nil); got != nil {
		t.Fatalf("expected nil schedule for no teams, got %v", got)
	}
	if got := RoundRobin([]string{"solo"}); got != nil {
		t.Fatalf("expected nil schedule for one team, got %v", got)
	}
}

func TestRoundRobin_Properties(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 11; n++ {
		teams := make([]string, n)
		for i := range teams {
			teams[i] = fmt.Sprintf("team-%02d", i)
		}

		rounds := RoundRobin(teams)
		if len(rounds) != RoundCount(n) {
			t.Fatalf("n=%d: unexpected round count: got=%d want=%d", n, len(rounds), RoundCount(n))
		}

		seenPairs := make(map[[2]string]int)
		for r, round := range rounds {
			seenInRound := make(map[string]struct{})
			for _, p := range round {
				for _, id := range []string{p.TeamA, p.TeamB} {
					if _, dup := seenInRound[id]; dup {
						t.Fatalf("n=%d round=%d: team %s appears twice", n, r, id)
					}
					seenInRound[id] = struct{}{}
				}
				key := [2]string{p.TeamA, p.TeamB}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				seenPairs[key]++
			}
		}

		wantPairs := n * (n - 1) / 2
		if len(seenPairs) != wantPairs {
			t.Fatalf("n=%d: unexpected distinct pair count: got=%d want=%d", n, len(seenPairs), wantPairs)
		}
		for key, count := range seenPairs {
			if count != 1 {
				t.Fatalf("n=%d: pair %v played %d times", n, key, count)
			}
		}
	}
}

func TestRoundRobin_Deterministic(t *testing.T) {
	t.Parallel()

	teams := []string{"w", "x", "y", "z", "v"}
	first := RoundRobin(teams)
	second := RoundRobin(teams)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("schedule is not deterministic:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"w", "x", "y", "z", "v"}, teams); diff != "" {
		t.Fatalf("input slice was mutated:\n%s", diff)
	}
}
