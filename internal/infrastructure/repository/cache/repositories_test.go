package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
)

type countingLeagueRepository struct {
	seasonCalls atomic.Int32
	memberCalls atomic.Int32
	failSeason  bool
}

func (r *countingLeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	return league.League{ID: leagueID}, true, nil
}

func (r *countingLeagueRepository) GetSeason(_ context.Context, seasonID string) (league.Season, bool, error) {
	r.seasonCalls.Add(1)
	if r.failSeason {
		return league.Season{}, false, errors.New("db down")
	}
	if seasonID == "missing" {
		return league.Season{}, false, nil
	}
	return league.Season{ID: seasonID, LeagueID: "lg-1"}, true, nil
}

func (r *countingLeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.memberCalls.Add(1)
	return league.Member{}, false, nil
}

type fakeStore struct {
	leagues league.Repository
}

func (s fakeStore) View(ctx context.Context, fn store.TxFunc) error {
	return fn(ctx, store.Repositories{Leagues: s.leagues})
}

func (s fakeStore) Update(ctx context.Context, fn store.TxFunc) error {
	return fn(ctx, store.Repositories{Leagues: s.leagues})
}

func readSeason(t *testing.T, st store.Store, seasonID string) (league.Season, bool, error) {
	t.Helper()

	var (
		season league.Season
		exists bool
	)
	err := st.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		season, exists, err = r.Leagues.GetSeason(ctx, seasonID)
		return err
	})
	return season, exists, err
}

func TestStore_CachesSeasonAcrossTransactions(t *testing.T) {
	t.Parallel()

	repo := &countingLeagueRepository{}
	st := NewStore(fakeStore{leagues: repo}, time.Minute)

	for i := 0; i < 3; i++ {
		season, exists, err := readSeason(t, st, "s-1")
		if err != nil || !exists || season.ID != "s-1" {
			t.Fatalf("unexpected season: %+v exists=%v err=%v", season, exists, err)
		}
	}
	if got := repo.seasonCalls.Load(); got != 1 {
		t.Fatalf("unexpected season loads: got=%d want=%d", got, 1)
	}

	// Misses are cached too.
	for i := 0; i < 2; i++ {
		if _, exists, err := readSeason(t, st, "missing"); err != nil || exists {
			t.Fatalf("expected cached miss, exists=%v err=%v", exists, err)
		}
	}
	if got := repo.seasonCalls.Load(); got != 2 {
		t.Fatalf("unexpected season loads: got=%d want=%d", got, 2)
	}
}

func TestStore_DoesNotCacheErrorsOrMembers(t *testing.T) {
	t.Parallel()

	repo := &countingLeagueRepository{failSeason: true}
	st := NewStore(fakeStore{leagues: repo}, time.Minute)

	for i := 0; i < 2; i++ {
		if _, _, err := readSeason(t, st, "s-1"); err == nil {
			t.Fatalf("expected load error")
		}
	}
	if got := repo.seasonCalls.Load(); got != 2 {
		t.Fatalf("unexpected season loads: got=%d want=%d", got, 2)
	}

	err := st.Update(context.Background(), func(ctx context.Context, r store.Repositories) error {
		for i := 0; i < 2; i++ {
			if _, _, err := r.Leagues.GetMember(ctx, "lg-1", "u-1"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := repo.memberCalls.Load(); got != 2 {
		t.Fatalf("unexpected member loads: got=%d want=%d", got, 2)
	}
}
