// Package cache decorates a store with read-through caching of league and
// season lookups. Season rules are not mutated through the service, so
// entries only expire by TTL.
package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	basecache "github.com/riskibarqy/playhub-league/internal/platform/cache"
)

type cachedLeague struct {
	value  league.League
	exists bool
}

type cachedSeason struct {
	value  league.Season
	exists bool
}

// Store hands every transaction a caching league repository.
type Store struct {
	next    store.Store
	leagues *basecache.Store[cachedLeague]
	seasons *basecache.Store[cachedSeason]
}

var _ store.Store = (*Store)(nil)

func NewStore(next store.Store, ttl time.Duration) *Store {
	return &Store{
		next:    next,
		leagues: basecache.NewStore[cachedLeague](ttl),
		seasons: basecache.NewStore[cachedSeason](ttl),
	}
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	return s.next.View(ctx, s.wrap(fn))
}

func (s *Store) Update(ctx context.Context, fn store.TxFunc) error {
	return s.next.Update(ctx, s.wrap(fn))
}

func (s *Store) wrap(fn store.TxFunc) store.TxFunc {
	return func(ctx context.Context, repos store.Repositories) error {
		repos.Leagues = &LeagueRepository{next: repos.Leagues, leagues: s.leagues, seasons: s.seasons}
		return fn(ctx, repos)
	}
}

// LeagueRepository caches GetByID and GetSeason. Membership lookups pass
// through because roles change outside the season lifecycle.
type LeagueRepository struct {
	next    league.Repository
	leagues *basecache.Store[cachedLeague]
	seasons *basecache.Store[cachedSeason]
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	v, err := r.leagues.GetOrLoad(ctx, "league:id:"+leagueID, func(ctx context.Context) (cachedLeague, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return cachedLeague{}, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *LeagueRepository) GetSeason(ctx context.Context, seasonID string) (league.Season, bool, error) {
	v, err := r.seasons.GetOrLoad(ctx, "season:id:"+seasonID, func(ctx context.Context) (cachedSeason, error) {
		item, exists, err := r.next.GetSeason(ctx, seasonID)
		if err != nil {
			return cachedSeason{}, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.Season{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	return r.next.GetMember(ctx, leagueID, userID)
}
