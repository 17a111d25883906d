package standing

import (
	"testing"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

func finalPairing(id, a, b string, score pairing.Score) pairing.Pairing {
	s := score
	return pairing.Pairing{ID: id, PlayerAID: a, PlayerBID: b, State: pairing.StateFinal, Score: &s}
}

func sumPoints(events []PointsEvent, kind PointsKind, teamID string) int {
	total := 0
	for _, e := range events {
		if e.Kind == kind && e.TeamID == teamID {
			total += e.Points
		}
	}
	return total
}

func TestComputeWeek_ThreeToOneAwardsBonus(t *testing.T) {
	t.Parallel()

	p1 := finalPairing("p1", "alice", "bob", pairing.Score{A: 2, B: 1})
	p1.SeedIndex = 2
	in := WeekInput{
		SeasonID:  "s1",
		WeekID:    "w1",
		WeekIndex: 1,
		K:         25,
		Matchups: []MatchupResult{{
			Matchup:  week.Matchup{ID: "m1", TeamAID: "ta", TeamBID: "tb"},
			Pairings: []pairing.Pairing{p1},
		}},
		Ratings: map[string]int{"alice": 250, "bob": 250},
	}

	got, err := ComputeWeek(in)
	if err != nil {
		t.Fatalf("compute week: %v", err)
	}

	// 2 game wins + 1 match win for A against 1 game win for B.
	if a := sumPoints(got.Points, KindGameWin, "ta") + sumPoints(got.Points, KindMatchWin, "ta"); a != 3 {
		t.Fatalf("unexpected team A pairing points: got=%d want=3", a)
	}
	if b := sumPoints(got.Points, KindGameWin, "tb") + sumPoints(got.Points, KindMatchWin, "tb"); b != 1 {
		t.Fatalf("unexpected team B pairing points: got=%d want=1", b)
	}
	if bonus := sumPoints(got.Points, KindTeamWeekBonus, "ta"); bonus != 3 {
		t.Fatalf("unexpected team A bonus: got=%d want=3", bonus)
	}
	if bonus := sumPoints(got.Points, KindTeamWeekBonus, "tb"); bonus != 0 {
		t.Fatalf("unexpected team B bonus: got=%d want=0", bonus)
	}
	for _, e := range got.Points {
		if e.Kind == KindTeamWeekBonus && e.UserID != "" {
			t.Fatalf("team bonus must not carry a user: %+v", e)
		}
		want := map[PointsKind]string{
			KindGameWin:       "Week 1 pairing 2 game wins",
			KindMatchWin:      "Week 1 pairing 2 match win",
			KindTeamWeekBonus: "Week 1 bonus (matchup m1)",
		}[e.Kind]
		if e.Reason != want {
			t.Fatalf("unexpected %s reason: got=%q want=%q", e.Kind, e.Reason, want)
		}
	}

	if len(got.Ratings) != 2 {
		t.Fatalf("unexpected rating change count: got=%d want=2", len(got.Ratings))
	}
	if got.Ratings[0].UserID != "alice" || got.Ratings[0].Delta != 6 || got.Ratings[0].After != 256 {
		t.Fatalf("unexpected winner rating change: %+v", got.Ratings[0])
	}
	if got.Ratings[1].UserID != "bob" || got.Ratings[1].Delta != -6 || got.Ratings[1].After != 244 {
		t.Fatalf("unexpected loser rating change: %+v", got.Ratings[1])
	}
}

func TestComputeWeek_TieAwardsOneEach(t *testing.T) {
	t.Parallel()

	in := WeekInput{
		WeekIndex: 2,
		K:         25,
		Matchups: []MatchupResult{{
			Matchup: week.Matchup{ID: "m1", TeamAID: "ta", TeamBID: "tb"},
			Pairings: []pairing.Pairing{
				finalPairing("p1", "a1", "b1", pairing.Score{A: 2, B: 0}),
				finalPairing("p2", "a2", "b2", pairing.Score{A: 0, B: 2}),
			},
		}},
		Ratings: map[string]int{"a1": 250, "b1": 250, "a2": 250, "b2": 250},
	}

	got, err := ComputeWeek(in)
	if err != nil {
		t.Fatalf("compute week: %v", err)
	}
	if a, b := sumPoints(got.Points, KindTeamWeekBonus, "ta"), sumPoints(got.Points, KindTeamWeekBonus, "tb"); a != 1 || b != 1 {
		t.Fatalf("unexpected tie bonus: a=%d b=%d", a, b)
	}
}

func TestComputeWeek_UsesPreFinalizationSnapshot(t *testing.T) {
	t.Parallel()

	// alice plays two seeds; both deltas come from the same 250 starting point.
	in := WeekInput{
		WeekIndex: 3,
		K:         25,
		Matchups: []MatchupResult{{
			Matchup: week.Matchup{ID: "m1", TeamAID: "ta", TeamBID: "tb"},
			Pairings: []pairing.Pairing{
				finalPairing("p1", "alice", "bob", pairing.Score{A: 2, B: 0}),
				finalPairing("p2", "alice", "carol", pairing.Score{A: 2, B: 0}),
			},
		}},
		Ratings: map[string]int{"alice": 250, "bob": 250, "carol": 250},
	}

	got, err := ComputeWeek(in)
	if err != nil {
		t.Fatalf("compute week: %v", err)
	}
	if got.Ratings[0].UserID != "alice" || got.Ratings[0].Delta != 26 || got.Ratings[0].Before != 250 {
		t.Fatalf("unexpected accumulated change: %+v", got.Ratings[0])
	}
}

func TestComputeWeek_RejectsMissingScore(t *testing.T) {
	t.Parallel()

	in := WeekInput{
		Matchups: []MatchupResult{{
			Matchup:  week.Matchup{ID: "m1", TeamAID: "ta", TeamBID: "tb"},
			Pairings: []pairing.Pairing{{ID: "p1", PlayerAID: "a", PlayerBID: "b"}},
		}},
		Ratings: map[string]int{"a": 250, "b": 250},
	}
	if _, err := ComputeWeek(in); err == nil {
		t.Fatalf("expected error for pairing without score")
	}
}

func TestTallyAndSort(t *testing.T) {
	t.Parallel()

	events := []PointsEvent{
		{TeamID: "ta", UserID: "u1", Points: 2},
		{TeamID: "ta", Points: 3},
		{TeamID: "tb", UserID: "u2", Points: 5},
	}
	teamPoints, playerPoints := Tally(events)
	if teamPoints["ta"] != 5 || teamPoints["tb"] != 5 {
		t.Fatalf("unexpected team tally: %v", teamPoints)
	}
	if playerPoints["u1"] != 2 || playerPoints["u2"] != 5 {
		t.Fatalf("unexpected player tally: %v", playerPoints)
	}

	teams := []TeamRow{{TeamID: "tb", Name: "Bravo", Points: 5}, {TeamID: "tc", Name: "Charlie", Points: 9}, {TeamID: "ta", Name: "Alpha", Points: 5}}
	SortTeams(teams)
	if teams[0].TeamID != "tc" || teams[1].TeamID != "ta" || teams[2].TeamID != "tb" {
		t.Fatalf("unexpected team order: %+v", teams)
	}

	players := []PlayerRow{{UserID: "z", Points: 1}, {UserID: "u", Email: "amy@example.com", Points: 1}, {UserID: "k", Email: "kim@example.com", Points: 4}}
	SortPlayers(players)
	if players[0].UserID != "k" || players[1].UserID != "u" || players[2].UserID != "z" {
		t.Fatalf("unexpected player order: %+v", players)
	}
}
