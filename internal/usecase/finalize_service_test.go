package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
)

func (f *leagueFixture) ledgers(t *testing.T) ([]standing.PointsEvent, []rating.Event) {
	t.Helper()

	var points []standing.PointsEvent
	var events []rating.Event
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		if points, err = r.Points.ListByWeek(ctx, f.weekID); err != nil {
			return err
		}
		events, err = r.Ratings.ListEventsByUser(ctx, memory.DemoLeagueID, f.seedPairings[0].PlayerAID)
		return err
	})
	if err != nil {
		t.Fatalf("read ledgers: %v", err)
	}
	return points, events
}

func TestFinalizeService_RejectsPendingPairings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture(t, memory.DemoSeed())
	f.openFirstWeek(t)

	if _, err := f.pairings.AdminResolve(ctx, f.admin, f.seedPairings[0].ID, ResolveInput{Winner: pairing.SideA}); err != nil {
		t.Fatalf("admin resolve: %v", err)
	}

	_, err := f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var notFinal *NotFinalError
	if !errors.As(err, &notFinal) {
		t.Fatalf("expected *NotFinalError, got %T", err)
	}
	// Two matchups of four seeds, one resolved.
	if len(notFinal.Pairings) != 7 {
		t.Fatalf("unexpected pending count: got=%d want=%d", len(notFinal.Pairings), 7)
	}
	for _, p := range notFinal.Pairings {
		if p.PairingID == f.seedPairings[0].ID {
			t.Fatalf("final pairing listed as pending: %+v", p)
		}
	}

	points, events := f.ledgers(t)
	if len(points) != 0 || len(events) != 0 {
		t.Fatalf("rejected finalize must not write ledgers: points=%d events=%d", len(points), len(events))
	}
}

func TestFinalizeService_FinalizeWeek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture(t, memory.DemoSeed())
	f.openFirstWeek(t)
	f.resolveAll(t, pairing.Score{A: 2, B: 0})

	before := map[string]int{}
	for _, p := range f.seedPairings {
		before[p.PlayerAID], _ = f.hiddenRating(t, p.PlayerAID)
		before[p.PlayerBID], _ = f.hiddenRating(t, p.PlayerBID)
	}

	if _, err := f.finalizer.FinalizeWeek(ctx, player(f.seedPairings[0].PlayerAID), f.weekID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	result, err := f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.Week.State != week.StateFinal || result.Week.LocksAt == nil {
		t.Fatalf("unexpected week after finalize: %+v", result.Week)
	}
	// Per matchup: two game events and one match event per pairing, plus two bonuses.
	if len(result.PointsEvents) != 2*(4*3+2) {
		t.Fatalf("unexpected points event count: got=%d want=%d", len(result.PointsEvents), 2*(4*3+2))
	}
	if len(result.RatingChanges) != 16 {
		t.Fatalf("unexpected rating change count: got=%d want=%d", len(result.RatingChanges), 16)
	}

	teamPoints, _ := standing.Tally(result.PointsEvents)
	wantA := 4*2 + 4*standing.MatchWinPoints + standing.WeekBonusWin
	if got := teamPoints[f.matchup.TeamAID]; got != wantA {
		t.Fatalf("unexpected side A points: got=%d want=%d", got, wantA)
	}
	if got := teamPoints[f.matchup.TeamBID]; got != standing.WeekBonusLoss {
		t.Fatalf("unexpected side B points: got=%d want=%d", got, standing.WeekBonusLoss)
	}

	for _, p := range f.seedPairings {
		after, _ := f.hiddenRating(t, p.PlayerAID)
		if after <= before[p.PlayerAID] {
			t.Fatalf("winner %s rating should rise: before=%d after=%d", p.PlayerAID, before[p.PlayerAID], after)
		}
		after, _ = f.hiddenRating(t, p.PlayerBID)
		if after >= before[p.PlayerBID] {
			t.Fatalf("loser %s rating should fall: before=%d after=%d", p.PlayerBID, before[p.PlayerBID], after)
		}
	}

	points, events := f.ledgers(t)
	if len(events) != 1 || events[0].Kind != rating.EventMatchResult || events[0].Reason != "Week 1 finalize" {
		t.Fatalf("unexpected rating events: %+v", events)
	}

	_, err = f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second finalize, got %v", err)
	}
	again, eventsAgain := f.ledgers(t)
	if len(again) != len(points) || len(eventsAgain) != len(events) {
		t.Fatalf("second finalize wrote ledger rows: points=%d/%d events=%d/%d", len(again), len(points), len(eventsAgain), len(events))
	}

	if _, err := f.pairings.ReportResult(ctx, f.admin, f.seedPairings[0].ID, pairing.Score{A: 0, B: 2}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict mutating a final week, got %v", err)
	}
}

func TestFinalizeService_EmptyWeek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seed := memory.DemoSeed()
	seed.Weeks = append(seed.Weeks, week.Week{ID: "w-empty", SeasonID: memory.DemoSeasonID, Index: 9, State: week.StateOpen})
	f := newLeagueFixture(t, seed)

	result, err := f.finalizer.FinalizeWeek(ctx, f.admin, "w-empty")
	if err != nil {
		t.Fatalf("finalize empty week: %v", err)
	}
	if len(result.PointsEvents) != 0 || len(result.RatingChanges) != 0 || result.Week.State != week.StateFinal {
		t.Fatalf("unexpected empty week result: %+v", result)
	}
}

func TestFinalizeService_InvalidatesStandings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture(t, memory.DemoSeed())
	f.openFirstWeek(t)

	empty, err := f.standings.Get(ctx, memory.DemoSeasonID)
	if err != nil {
		t.Fatalf("standings before finalize: %v", err)
	}
	if len(empty.Teams) != 4 || len(empty.Players) != 0 {
		t.Fatalf("unexpected standings before finalize: teams=%d players=%d", len(empty.Teams), len(empty.Players))
	}
	for _, row := range empty.Teams {
		if row.Points != 0 || row.CaptainEmail == "" {
			t.Fatalf("unexpected team row: %+v", row)
		}
	}

	f.resolveAll(t, pairing.Score{A: 2, B: 1})
	if _, err := f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	got, err := f.standings.Get(ctx, memory.DemoSeasonID)
	if err != nil {
		t.Fatalf("standings after finalize: %v", err)
	}
	if len(got.Players) != 16 {
		t.Fatalf("unexpected player rows: got=%d want=%d", len(got.Players), 16)
	}
	top := got.Teams[0]
	wantTop := 4*2 + 4*standing.MatchWinPoints + standing.WeekBonusWin
	if top.Points != wantTop {
		t.Fatalf("unexpected leader points: got=%d want=%d", top.Points, wantTop)
	}
	for i := 1; i < len(got.Teams); i++ {
		if got.Teams[i].Points > got.Teams[i-1].Points {
			t.Fatalf("team table not sorted: %+v", got.Teams)
		}
	}
}

// limitedIDs issues limit ids and fails afterwards.
type limitedIDs struct {
	limit  int
	issued int
}

func (g *limitedIDs) NewID() (string, error) {
	if g.issued >= g.limit {
		return "", errors.New("id source exhausted")
	}
	g.issued++
	return fmt.Sprintf("id-%d", g.issued), nil
}

func TestFinalizeService_FailedApplyLeavesNoTrace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture(t, memory.DemoSeed())
	f.openFirstWeek(t)
	f.resolveAll(t, pairing.Score{A: 2, B: 1})

	winner := f.seedPairings[0].PlayerAID
	before, _ := f.hiddenRating(t, winner)

	// 28 points events fit; the failure lands between rating updates.
	f.finalizer.ids = &limitedIDs{limit: 30}
	if _, err := f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID); err == nil {
		t.Fatalf("expected finalize to fail when ids run out")
	}

	points, events := f.ledgers(t)
	if len(points) != 0 || len(events) != 0 {
		t.Fatalf("failed finalize left ledger rows: points=%d events=%d", len(points), len(events))
	}
	if after, _ := f.hiddenRating(t, winner); after != before {
		t.Fatalf("failed finalize changed rating: before=%d after=%d", before, after)
	}
	if _, err := f.pairings.Dispute(ctx, f.admin, f.seedPairings[0].ID, ""); err != nil {
		t.Fatalf("week must still accept pairing actions: %v", err)
	}
	if _, err := f.pairings.AdminResolve(ctx, f.admin, f.seedPairings[0].ID, ResolveInput{Score: &pairing.Score{A: 2, B: 1}}); err != nil {
		t.Fatalf("re-resolve: %v", err)
	}

	f.finalizer.ids = id.NewUUIDGenerator()
	result, err := f.finalizer.FinalizeWeek(ctx, f.admin, f.weekID)
	if err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
	if result.Week.State != week.StateFinal || len(result.PointsEvents) != 28 {
		t.Fatalf("unexpected retry result: state=%s points=%d", result.Week.State, len(result.PointsEvents))
	}
}
