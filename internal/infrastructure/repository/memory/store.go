package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

var _ store.Store = (*Store)(nil)

// Store keeps every entity in process memory. Update runs against a copy of
// the dataset that replaces the live one only when fn succeeds, and
// serializes writers behind a single lock.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// Seed is the initial content of a Store.
type Seed struct {
	Leagues       []league.League
	Seasons       []league.Season
	Members       []league.Member
	Users         []user.User
	Teams         []team.Team
	Slots         []team.RosterSlot
	Weeks         []week.Week
	Matchups      []week.Matchup
	Pairings      []pairing.Pairing
	Substitutions []substitution.Request
	Ratings       []rating.Rating
}

func NewStore(seed Seed) *Store {
	d := newDataset()
	for _, l := range seed.Leagues {
		d.leagues[l.ID] = l
	}
	for _, s := range seed.Seasons {
		d.seasons[s.ID] = s
	}
	for _, m := range seed.Members {
		d.members[memberKey(m.LeagueID, m.UserID)] = m
	}
	for _, u := range seed.Users {
		d.users.put(u.ID, u)
	}
	for _, t := range seed.Teams {
		d.teams.put(t.ID, t)
	}
	for _, s := range seed.Slots {
		d.slots[s.TeamID] = append(d.slots[s.TeamID], s)
	}
	for _, w := range seed.Weeks {
		d.weeks.put(w.ID, w)
	}
	for _, m := range seed.Matchups {
		d.matchups.put(m.ID, m)
	}
	for _, p := range seed.Pairings {
		d.pairings.put(p.ID, p)
	}
	for _, r := range seed.Substitutions {
		d.substitutions.put(r.ID, r)
	}
	for _, r := range seed.Ratings {
		d.ratings[ratingKey(r.LeagueID, r.UserID)] = r
	}

	return &Store{data: d}
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, repositories(&session{data: s.data}))
}

func (s *Store) Update(ctx context.Context, fn store.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	if err := fn(ctx, repositories(&session{data: next, writable: true})); err != nil {
		return err
	}
	s.data = next
	return nil
}

type session struct {
	data     *dataset
	writable bool
}

func (s *session) write() error {
	if !s.writable {
		return store.ErrReadOnly
	}
	return nil
}

func repositories(s *session) store.Repositories {
	return store.Repositories{
		Leagues:       &LeagueRepository{s: s},
		Users:         &UserRepository{s: s},
		Teams:         &TeamRepository{s: s},
		Weeks:         &WeekRepository{s: s},
		Pairings:      &PairingRepository{s: s},
		Substitutions: &SubstitutionRepository{s: s},
		Ratings:       &RatingRepository{s: s},
		Points:        &PointsRepository{s: s},
	}
}

// table is a map that remembers insertion order.
type table[T any] struct {
	items  map[string]T
	orders []string
}

func newTable[T any]() table[T] {
	return table[T]{items: make(map[string]T)}
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.items[id]; !ok {
		t.orders = append(t.orders, id)
	}
	t.items[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.items[id]
	return v, ok
}

func (t *table[T]) remove(ids map[string]struct{}) {
	if len(ids) == 0 {
		return
	}
	for id := range ids {
		delete(t.items, id)
	}
	t.orders = slices.DeleteFunc(t.orders, func(id string) bool {
		_, gone := ids[id]
		return gone
	})
}

func (t *table[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, id := range t.orders {
		if v := t.items[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t table[T]) clone() table[T] {
	return table[T]{items: maps.Clone(t.items), orders: slices.Clone(t.orders)}
}

type dataset struct {
	leagues       map[string]league.League
	seasons       map[string]league.Season
	members       map[string]league.Member
	users         table[user.User]
	teams         table[team.Team]
	slots         map[string][]team.RosterSlot
	weeks         table[week.Week]
	matchups      table[week.Matchup]
	pairings      table[pairing.Pairing]
	substitutions table[substitution.Request]
	ratings       map[string]rating.Rating
	ratingEvents  []rating.Event
	points        []standing.PointsEvent
}

func newDataset() *dataset {
	return &dataset{
		leagues:       make(map[string]league.League),
		seasons:       make(map[string]league.Season),
		members:       make(map[string]league.Member),
		users:         newTable[user.User](),
		teams:         newTable[team.Team](),
		slots:         make(map[string][]team.RosterSlot),
		weeks:         newTable[week.Week](),
		matchups:      newTable[week.Matchup](),
		pairings:      newTable[pairing.Pairing](),
		substitutions: newTable[substitution.Request](),
		ratings:       make(map[string]rating.Rating),
	}
}

// clone copies every container. Entity values are copied by value; pointer
// fields inside them are replaced, never mutated in place, by the repositories.
func (d *dataset) clone() *dataset {
	slots := make(map[string][]team.RosterSlot, len(d.slots))
	for teamID, rows := range d.slots {
		slots[teamID] = slices.Clone(rows)
	}

	return &dataset{
		leagues:       maps.Clone(d.leagues),
		seasons:       maps.Clone(d.seasons),
		members:       maps.Clone(d.members),
		users:         d.users.clone(),
		teams:         d.teams.clone(),
		slots:         slots,
		weeks:         d.weeks.clone(),
		matchups:      d.matchups.clone(),
		pairings:      d.pairings.clone(),
		substitutions: d.substitutions.clone(),
		ratings:       maps.Clone(d.ratings),
		ratingEvents:  slices.Clone(d.ratingEvents),
		points:        slices.Clone(d.points),
	}
}

func memberKey(leagueID, userID string) string {
	return leagueID + "|" + userID
}

func ratingKey(leagueID, userID string) string {
	return leagueID + "|" + userID
}
