package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

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

type LeagueRepository struct {
	s *session
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	l, ok := r.s.data.leagues[leagueID]
	return l, ok, nil
}

func (r *LeagueRepository) GetSeason(_ context.Context, seasonID string) (league.Season, bool, error) {
	s, ok := r.s.data.seasons[seasonID]
	return s, ok, nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	m, ok := r.s.data.members[memberKey(leagueID, userID)]
	return m, ok, nil
}

type UserRepository struct {
	s *session
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	u, ok := r.s.data.users.get(userID)
	return u, ok, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	email = user.NormalizeEmail(email)
	for _, id := range r.s.data.users.orders {
		if u := r.s.data.users.items[id]; user.NormalizeEmail(u.Email) == email {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, userIDs []string) ([]user.User, error) {
	out := make([]user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.s.data.users.get(id); ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type TeamRepository struct {
	s *session
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	t, ok := r.s.data.teams.get(teamID)
	return t, ok, nil
}

func (r *TeamRepository) ListBySeason(_ context.Context, seasonID string) ([]team.Team, error) {
	return r.s.data.teams.filter(func(t team.Team) bool { return t.SeasonID == seasonID }), nil
}

func (r *TeamRepository) ListSlots(_ context.Context, teamID string) ([]team.RosterSlot, error) {
	out := slices.Clone(r.s.data.slots[teamID])
	slices.SortFunc(out, func(a, b team.RosterSlot) int { return cmp.Compare(a.SeedIndex, b.SeedIndex) })
	return out, nil
}

func (r *TeamRepository) ReplaceRoster(_ context.Context, teamID string, slots []team.RosterSlot, submittedAt time.Time) error {
	if err := r.s.write(); err != nil {
		return err
	}
	t, ok := r.s.data.teams.get(teamID)
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}

	rows := make([]team.RosterSlot, 0, len(slots))
	for _, slot := range slots {
		slot.TeamID = teamID
		slot.RatingAtLock = nil
		rows = append(rows, slot)
	}
	r.s.data.slots[teamID] = rows

	at := submittedAt.UTC()
	t.RosterSubmittedAt = &at
	t.RosterApprovedAt = nil
	r.s.data.teams.put(teamID, t)
	return nil
}

func (r *TeamRepository) LockRoster(_ context.Context, teamID string, approvedAt time.Time) error {
	if err := r.s.write(); err != nil {
		return err
	}
	t, ok := r.s.data.teams.get(teamID)
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}

	rows := slices.Clone(r.s.data.slots[teamID])
	for i := range rows {
		locked := rows[i].RatingAtSubmit
		rows[i].RatingAtLock = &locked
	}
	r.s.data.slots[teamID] = rows

	at := approvedAt.UTC()
	t.RosterApprovedAt = &at
	r.s.data.teams.put(teamID, t)
	return nil
}

type WeekRepository struct {
	s *session
}

func (r *WeekRepository) GetByID(_ context.Context, weekID string) (week.Week, bool, error) {
	w, ok := r.s.data.weeks.get(weekID)
	return w, ok, nil
}

func (r *WeekRepository) GetForUpdate(ctx context.Context, weekID string) (week.Week, bool, error) {
	return r.GetByID(ctx, weekID)
}

func (r *WeekRepository) GetByIndex(_ context.Context, seasonID string, index int) (week.Week, bool, error) {
	for _, id := range r.s.data.weeks.orders {
		if w := r.s.data.weeks.items[id]; w.SeasonID == seasonID && w.Index == index {
			return w, true, nil
		}
	}
	return week.Week{}, false, nil
}

func (r *WeekRepository) ListBySeason(_ context.Context, seasonID string) ([]week.Week, error) {
	out := r.s.data.weeks.filter(func(w week.Week) bool { return w.SeasonID == seasonID })
	slices.SortStableFunc(out, func(a, b week.Week) int { return cmp.Compare(a.Index, b.Index) })
	return out, nil
}

func (r *WeekRepository) Create(ctx context.Context, w week.Week) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.weeks.get(w.ID); ok {
		return fmt.Errorf("%w: week=%s", store.ErrDuplicate, w.ID)
	}
	if _, exists, _ := r.GetByIndex(ctx, w.SeasonID, w.Index); exists {
		return fmt.Errorf("%w: season=%s week_index=%d", store.ErrDuplicate, w.SeasonID, w.Index)
	}
	r.s.data.weeks.put(w.ID, w)
	return nil
}

func (r *WeekRepository) Update(_ context.Context, w week.Week) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.weeks.get(w.ID); !ok {
		return fmt.Errorf("week %s not found", w.ID)
	}
	r.s.data.weeks.put(w.ID, w)
	return nil
}

func (r *WeekRepository) DeleteBySeason(_ context.Context, seasonID string) error {
	if err := r.s.write(); err != nil {
		return err
	}
	weekIDs := make(map[string]struct{})
	for _, w := range r.s.data.weeks.filter(func(w week.Week) bool { return w.SeasonID == seasonID }) {
		weekIDs[w.ID] = struct{}{}
	}
	r.deleteMatchupsOf(weekIDs)
	r.s.data.weeks.remove(weekIDs)
	return nil
}

func (r *WeekRepository) GetMatchup(_ context.Context, matchupID string) (week.Matchup, bool, error) {
	m, ok := r.s.data.matchups.get(matchupID)
	return m, ok, nil
}

func (r *WeekRepository) ListMatchups(_ context.Context, weekID string) ([]week.Matchup, error) {
	return r.s.data.matchups.filter(func(m week.Matchup) bool { return m.WeekID == weekID }), nil
}

func (r *WeekRepository) CreateMatchup(_ context.Context, m week.Matchup) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.matchups.get(m.ID); ok {
		return fmt.Errorf("%w: matchup=%s", store.ErrDuplicate, m.ID)
	}
	r.s.data.matchups.put(m.ID, m)
	return nil
}

func (r *WeekRepository) SetMatchupsState(_ context.Context, weekID string, state week.MatchupState) error {
	if err := r.s.write(); err != nil {
		return err
	}
	for _, m := range r.s.data.matchups.filter(func(m week.Matchup) bool { return m.WeekID == weekID }) {
		m.State = state
		r.s.data.matchups.put(m.ID, m)
	}
	return nil
}

func (r *WeekRepository) DeleteMatchups(_ context.Context, weekID string) error {
	if err := r.s.write(); err != nil {
		return err
	}
	r.deleteMatchupsOf(map[string]struct{}{weekID: {}})
	return nil
}

// deleteMatchupsOf cascades to pairings and their substitution requests.
func (r *WeekRepository) deleteMatchupsOf(weekIDs map[string]struct{}) {
	d := r.s.data
	matchupIDs := make(map[string]struct{})
	for _, m := range d.matchups.filter(func(m week.Matchup) bool { _, ok := weekIDs[m.WeekID]; return ok }) {
		matchupIDs[m.ID] = struct{}{}
	}
	pairingIDs := make(map[string]struct{})
	for _, p := range d.pairings.filter(func(p pairing.Pairing) bool { _, ok := matchupIDs[p.MatchupID]; return ok }) {
		pairingIDs[p.ID] = struct{}{}
	}
	requestIDs := make(map[string]struct{})
	for _, sr := range d.substitutions.filter(func(sr substitution.Request) bool { _, ok := pairingIDs[sr.PairingID]; return ok }) {
		requestIDs[sr.ID] = struct{}{}
	}

	d.substitutions.remove(requestIDs)
	d.pairings.remove(pairingIDs)
	d.matchups.remove(matchupIDs)
}

type PairingRepository struct {
	s *session
}

func (r *PairingRepository) GetByID(_ context.Context, pairingID string) (pairing.Pairing, bool, error) {
	p, ok := r.s.data.pairings.get(pairingID)
	return p, ok, nil
}

func (r *PairingRepository) GetForUpdate(ctx context.Context, pairingID string) (pairing.Pairing, bool, error) {
	return r.GetByID(ctx, pairingID)
}

func (r *PairingRepository) ListByMatchup(_ context.Context, matchupID string) ([]pairing.Pairing, error) {
	out := r.s.data.pairings.filter(func(p pairing.Pairing) bool { return p.MatchupID == matchupID })
	slices.SortStableFunc(out, func(a, b pairing.Pairing) int { return cmp.Compare(a.SeedIndex, b.SeedIndex) })
	return out, nil
}

func (r *PairingRepository) ListByWeek(ctx context.Context, weekID string) ([]pairing.Pairing, error) {
	out := make([]pairing.Pairing, 0)
	for _, m := range r.s.data.matchups.filter(func(m week.Matchup) bool { return m.WeekID == weekID }) {
		rows, err := r.ListByMatchup(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (r *PairingRepository) Create(_ context.Context, p pairing.Pairing) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.pairings.get(p.ID); ok {
		return fmt.Errorf("%w: pairing=%s", store.ErrDuplicate, p.ID)
	}
	r.s.data.pairings.put(p.ID, p)
	return nil
}

func (r *PairingRepository) Update(_ context.Context, p pairing.Pairing) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.pairings.get(p.ID); !ok {
		return fmt.Errorf("pairing %s not found", p.ID)
	}
	r.s.data.pairings.put(p.ID, p)
	return nil
}

type SubstitutionRepository struct {
	s *session
}

func (r *SubstitutionRepository) GetByID(_ context.Context, requestID string) (substitution.Request, bool, error) {
	sr, ok := r.s.data.substitutions.get(requestID)
	return sr, ok, nil
}

func (r *SubstitutionRepository) ListByPairing(_ context.Context, pairingID string) ([]substitution.Request, error) {
	return r.s.data.substitutions.filter(func(sr substitution.Request) bool { return sr.PairingID == pairingID }), nil
}

func (r *SubstitutionRepository) ListBySeason(_ context.Context, seasonID string) ([]substitution.Request, error) {
	out := r.s.data.substitutions.filter(func(sr substitution.Request) bool { return sr.SeasonID == seasonID })
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b substitution.Request) int { return b.RequestedAt.Compare(a.RequestedAt) })
	return out, nil
}

func (r *SubstitutionRepository) Create(_ context.Context, sr substitution.Request) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.substitutions.get(sr.ID); ok {
		return fmt.Errorf("%w: substitution=%s", store.ErrDuplicate, sr.ID)
	}
	r.s.data.substitutions.put(sr.ID, sr)
	return nil
}

func (r *SubstitutionRepository) Update(_ context.Context, sr substitution.Request) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.data.substitutions.get(sr.ID); !ok {
		return fmt.Errorf("substitution %s not found", sr.ID)
	}
	r.s.data.substitutions.put(sr.ID, sr)
	return nil
}

type RatingRepository struct {
	s *session
}

func (r *RatingRepository) Get(_ context.Context, leagueID, userID string) (rating.Rating, bool, error) {
	v, ok := r.s.data.ratings[ratingKey(leagueID, userID)]
	return v, ok, nil
}

func (r *RatingRepository) ListByUsers(_ context.Context, leagueID string, userIDs []string) ([]rating.Rating, error) {
	out := make([]rating.Rating, 0, len(userIDs))
	for _, id := range userIDs {
		if v, ok := r.s.data.ratings[ratingKey(leagueID, id)]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *RatingRepository) Upsert(_ context.Context, v rating.Rating) error {
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.data.ratings[ratingKey(v.LeagueID, v.UserID)] = v
	return nil
}

func (r *RatingRepository) CreateIfAbsent(_ context.Context, v rating.Rating) (bool, error) {
	if err := r.s.write(); err != nil {
		return false, err
	}
	key := ratingKey(v.LeagueID, v.UserID)
	if _, ok := r.s.data.ratings[key]; ok {
		return false, nil
	}
	r.s.data.ratings[key] = v
	return true, nil
}

func (r *RatingRepository) AppendEvents(_ context.Context, events []rating.Event) error {
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.data.ratingEvents = append(r.s.data.ratingEvents, events...)
	return nil
}

func (r *RatingRepository) ListEventsByUser(_ context.Context, leagueID, userID string) ([]rating.Event, error) {
	out := make([]rating.Event, 0)
	for _, e := range r.s.data.ratingEvents {
		if e.LeagueID == leagueID && e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type PointsRepository struct {
	s *session
}

func (r *PointsRepository) AppendPoints(_ context.Context, events []standing.PointsEvent) error {
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.data.points = append(r.s.data.points, events...)
	return nil
}

func (r *PointsRepository) ListBySeason(_ context.Context, seasonID string) ([]standing.PointsEvent, error) {
	out := make([]standing.PointsEvent, 0)
	for _, e := range r.s.data.points {
		if e.SeasonID == seasonID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *PointsRepository) ListByWeek(_ context.Context, weekID string) ([]standing.PointsEvent, error) {
	out := make([]standing.PointsEvent, 0)
	for _, e := range r.s.data.points {
		if e.WeekID == weekID {
			out = append(out, e)
		}
	}
	return out, nil
}
