package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playhub-league/internal/platform/cache"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// Monday 10:00 in New York. The demo season's cutoffs for a week opened now
// are Wednesday, Thursday and Sunday at 23:59:59 local.
var fixtureNow = time.Date(2025, time.October, 6, 14, 0, 0, 0, time.UTC)

// afterResultsDeadline is Monday after the results cutoff of a week opened at fixtureNow.
var afterResultsDeadline = time.Date(2025, time.October, 13, 12, 0, 0, 0, time.UTC)

type leagueFixture struct {
	store        *memory.Store
	pairings     *PairingService
	subs         *SubstitutionService
	weeks        *WeekService
	finalizer    *FinalizeService
	rosters      *RosterService
	ratings      *RatingService
	standings    *StandingsService
	admin        user.Capability
	matchup      week.Matchup
	weekID       string
	seedPairings []pairing.Pairing
}

func newLeagueFixture(t *testing.T, seed memory.Seed) *leagueFixture {
	t.Helper()

	st := memory.NewStore(seed)
	logger := logging.NewNop()
	clock := func() time.Time { return fixtureNow }

	f := &leagueFixture{
		store:     st,
		pairings:  NewPairingService(st, logger, nil),
		subs:      NewSubstitutionService(st, nil, logger, nil),
		weeks:     NewWeekService(st, nil, logger),
		rosters:   NewRosterService(st, logger),
		ratings:   NewRatingService(st, nil, logger, nil),
		standings: NewStandingsService(st, cache.NewStore[Standings](time.Minute), logger),
		admin:     user.Capability{UserID: memory.DemoAdminID, LeagueID: memory.DemoLeagueID, IsLeagueAdmin: true},
	}
	f.finalizer = NewFinalizeService(st, nil, f.standings, logger, nil)

	f.pairings.now = clock
	f.subs.now = clock
	f.weeks.now = clock
	f.finalizer.now = clock
	f.rosters.now = clock
	f.ratings.now = clock
	f.standings.now = clock
	return f
}

// openFirstWeek generates and opens week 1 and remembers its first matchup.
func (f *leagueFixture) openFirstWeek(t *testing.T) {
	t.Helper()

	plan, err := f.weeks.GenerateWeek(context.Background(), f.admin, memory.DemoSeasonID, 1, true)
	if err != nil {
		t.Fatalf("generate week: %v", err)
	}
	if len(plan.Matchups) == 0 {
		t.Fatalf("expected matchups in generated week")
	}
	f.weekID = plan.Week.ID
	f.matchup = plan.Matchups[0]
	f.seedPairings = f.listPairings(t, f.matchup.ID)
}

func (f *leagueFixture) listPairings(t *testing.T, matchupID string) []pairing.Pairing {
	t.Helper()

	var out []pairing.Pairing
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		out, err = r.Pairings.ListByMatchup(ctx, matchupID)
		return err
	})
	if err != nil {
		t.Fatalf("list pairings: %v", err)
	}
	return out
}

func (f *leagueFixture) pairing(t *testing.T, pairingID string) pairing.Pairing {
	t.Helper()

	var out pairing.Pairing
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		out, _, err = r.Pairings.GetByID(ctx, pairingID)
		return err
	})
	if err != nil {
		t.Fatalf("get pairing: %v", err)
	}
	return out
}

func (f *leagueFixture) hiddenRating(t *testing.T, userID string) (int, bool) {
	t.Helper()

	var out rating.Rating
	var exists bool
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		out, exists, err = r.Ratings.Get(ctx, memory.DemoLeagueID, userID)
		return err
	})
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	return out.Hidden, exists
}

// player is a plain participant capability.
func player(userID string) user.Capability {
	return user.Capability{UserID: userID, LeagueID: memory.DemoLeagueID}
}

func captain(userID, teamID string) user.Capability {
	return user.Capability{UserID: userID, LeagueID: memory.DemoLeagueID, CaptainOf: []string{teamID}}
}

// resolveAll finalizes every pairing of the open week with the given score.
func (f *leagueFixture) resolveAll(t *testing.T, score pairing.Score) {
	t.Helper()

	var ids []string
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		rows, err := r.Pairings.ListByWeek(ctx, f.weekID)
		for _, p := range rows {
			ids = append(ids, p.ID)
		}
		return err
	})
	if err != nil {
		t.Fatalf("list week pairings: %v", err)
	}
	for _, pairingID := range ids {
		s := score
		if _, err := f.pairings.AdminResolve(context.Background(), f.admin, pairingID, ResolveInput{Score: &s}); err != nil {
			t.Fatalf("admin resolve %s: %v", pairingID, err)
		}
	}
}
