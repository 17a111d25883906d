package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	crdberrors "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/schedule"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// WeekPlan is a generated week with its matchups.
type WeekPlan struct {
	Week     week.Week
	Matchups []week.Matchup
}

// CurrentWeek is the open week of a season with its cutoffs.
type CurrentWeek struct {
	Week      week.Week
	Matchups  []week.Matchup
	Deadlines deadline.Deadlines
}

type WeekService struct {
	store  store.Store
	ids    id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewWeekService(st store.Store, ids id.Generator, logger *logging.Logger) *WeekService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WeekService{
		store:  st,
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
}

// rosterTeam is a schedulable team with its locked slots indexed by seed.
type rosterTeam struct {
	team  team.Team
	slots map[int]team.RosterSlot
}

// GenerateSeasonSchedule creates DRAFT weeks for the whole regular season.
// Existing weeks are replaced only when overwrite is set.
func (s *WeekService) GenerateSeasonSchedule(ctx context.Context, c user.Capability, seasonID string, overwrite bool) ([]WeekPlan, error) {
	ctx, finish := traceOp(ctx, "usecase.WeekService.GenerateSeasonSchedule", attribute.String("season.id", seasonID))
	var plans []WeekPlan
	var err error
	defer func() { finish(err) }()

	err = s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}

		existing, err := r.Weeks.ListBySeason(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("list weeks: %w", err)
		}
		if len(existing) > 0 {
			if !overwrite {
				return crdberrors.WithHint(
					fmt.Errorf("%w: season %s already has %d week(s)", ErrConflict, season.ID, len(existing)),
					"pass overwrite to replace the existing schedule",
				)
			}
			for _, w := range existing {
				if w.IsFinal() {
					return fmt.Errorf("%w: week %d is final and cannot be regenerated", ErrConflict, w.Index)
				}
			}
			if err := r.Weeks.DeleteBySeason(ctx, season.ID); err != nil {
				return fmt.Errorf("delete season weeks: %w", err)
			}
		}

		teams, rounds, err := s.plan(ctx, r, season)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		weeks := min(season.RegularWeeks, len(rounds))
		for i := range weeks {
			w := week.Week{SeasonID: season.ID, Index: i + 1, State: week.StateDraft, CreatedAt: now}
			if w.ID, err = s.ids.NewID(); err != nil {
				return fmt.Errorf("generate week id: %w", err)
			}
			if err := r.Weeks.Create(ctx, w); err != nil {
				return classify(fmt.Errorf("create week: %w", err))
			}
			matchups, err := s.createMatchups(ctx, r, w, rounds[i], teams, season.RosterSize, now)
			if err != nil {
				return err
			}
			plans = append(plans, WeekPlan{Week: w, Matchups: matchups})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "season schedule generated", "season_id", seasonID, "weeks", len(plans), "overwrite", overwrite)
	return plans, nil
}

// GenerateWeek builds one week from round (index-1) mod rounds, replacing the
// matchups of an existing non-final week. open also opens the week.
func (s *WeekService) GenerateWeek(ctx context.Context, c user.Capability, seasonID string, index int, open bool) (WeekPlan, error) {
	if index < 1 {
		return WeekPlan{}, fmt.Errorf("%w: week index must be at least 1", ErrInvalidInput)
	}

	var plan WeekPlan
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}

		teams, rounds, err := s.plan(ctx, r, season)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		w, exists, err := r.Weeks.GetByIndex(ctx, season.ID, index)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		switch {
		case exists && w.IsFinal():
			return fmt.Errorf("%w: week %d is final and cannot be regenerated", ErrConflict, index)
		case exists:
			if err := r.Weeks.DeleteMatchups(ctx, w.ID); err != nil {
				return fmt.Errorf("delete week matchups: %w", err)
			}
		default:
			w = week.Week{SeasonID: season.ID, Index: index, State: week.StateDraft, CreatedAt: now}
			if w.ID, err = s.ids.NewID(); err != nil {
				return fmt.Errorf("generate week id: %w", err)
			}
			if err := r.Weeks.Create(ctx, w); err != nil {
				return classify(fmt.Errorf("create week: %w", err))
			}
		}

		round := rounds[(index-1)%len(rounds)]
		matchups, err := s.createMatchups(ctx, r, w, round, teams, season.RosterSize, now)
		if err != nil {
			return err
		}
		switch {
		case open:
			if w, err = openWeek(ctx, r, w, now); err != nil {
				return err
			}
		case w.IsOpen():
			if err := r.Weeks.SetMatchupsState(ctx, w.ID, week.MatchupOpen); err != nil {
				return fmt.Errorf("open matchups: %w", err)
			}
		}
		if w.IsOpen() {
			for i := range matchups {
				matchups[i].State = week.MatchupOpen
			}
		}
		plan = WeekPlan{Week: w, Matchups: matchups}
		return nil
	})
	if err != nil {
		return WeekPlan{}, err
	}

	s.logger.InfoContext(ctx, "week generated", "season_id", seasonID, "week_index", index, "matchups", len(plan.Matchups), "open", open)
	return plan, nil
}

// OpenWeek makes a week the season's only OPEN week.
func (s *WeekService) OpenWeek(ctx context.Context, c user.Capability, seasonID string, index int) (week.Week, error) {
	var out week.Week
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}

		w, exists, err := r.Weeks.GetByIndex(ctx, season.ID, index)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: season=%s week_index=%d", ErrNotFound, season.ID, index)
		}
		if w, _, err = r.Weeks.GetForUpdate(ctx, w.ID); err != nil {
			return fmt.Errorf("lock week: %w", err)
		}
		out, err = openWeek(ctx, r, w, s.now().UTC())
		return err
	})
	if err != nil {
		return week.Week{}, err
	}

	s.logger.InfoContext(ctx, "week opened", "season_id", seasonID, "week_id", out.ID, "week_index", out.Index)
	return out, nil
}

// CurrentWeek returns the lowest-index OPEN week of a season.
func (s *WeekService) CurrentWeek(ctx context.Context, seasonID string) (CurrentWeek, error) {
	var out CurrentWeek
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		weeks, err := r.Weeks.ListBySeason(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("list weeks: %w", err)
		}

		idx := slices.IndexFunc(weeks, week.Week.IsOpen)
		if idx < 0 {
			return fmt.Errorf("%w: season %s has no open week", ErrNotFound, season.ID)
		}
		out.Week = weeks[idx]

		if out.Matchups, err = r.Weeks.ListMatchups(ctx, out.Week.ID); err != nil {
			return fmt.Errorf("list matchups: %w", err)
		}
		d, ok, err := weekDeadlines(out.Week, season)
		if err != nil {
			return err
		}
		if ok {
			out.Deadlines = d
		}
		return nil
	})
	return out, err
}

// openWeek demotes every other OPEN week of the season to LOCKED and opens w.
func openWeek(ctx context.Context, r store.Repositories, w week.Week, now time.Time) (week.Week, error) {
	if w.IsFinal() {
		return week.Week{}, fmt.Errorf("%w: week %d is final", ErrConflict, w.Index)
	}

	weeks, err := r.Weeks.ListBySeason(ctx, w.SeasonID)
	if err != nil {
		return week.Week{}, fmt.Errorf("list weeks: %w", err)
	}
	for _, other := range weeks {
		if other.ID == w.ID || !other.IsOpen() {
			continue
		}
		locksAt := now
		other.State = week.StateLocked
		other.LocksAt = &locksAt
		if err := r.Weeks.Update(ctx, other); err != nil {
			return week.Week{}, fmt.Errorf("lock week %d: %w", other.Index, err)
		}
	}

	opensAt := now
	w.State = week.StateOpen
	w.OpensAt = &opensAt
	w.LocksAt = nil
	if err := r.Weeks.Update(ctx, w); err != nil {
		return week.Week{}, fmt.Errorf("open week: %w", err)
	}
	if err := r.Weeks.SetMatchupsState(ctx, w.ID, week.MatchupOpen); err != nil {
		return week.Week{}, fmt.Errorf("open matchups: %w", err)
	}
	return w, nil
}

// plan loads the schedulable teams sorted by name and their round robin.
func (s *WeekService) plan(ctx context.Context, r store.Repositories, season league.Season) (map[string]rosterTeam, []schedule.Round, error) {
	teams, err := r.Teams.ListBySeason(ctx, season.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list teams: %w", err)
	}
	slices.SortStableFunc(teams, func(a, b team.Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	eligible := make(map[string]rosterTeam, len(teams))
	ordered := make([]string, 0, len(teams))
	for _, t := range teams {
		slots, err := r.Teams.ListSlots(ctx, t.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list roster slots: %w", err)
		}
		if !team.Schedulable(t, slots, season.RosterSize) {
			continue
		}
		bySeed := make(map[int]team.RosterSlot, len(slots))
		for _, slot := range slots {
			if slot.Active {
				bySeed[slot.SeedIndex] = slot
			}
		}
		eligible[t.ID] = rosterTeam{team: t, slots: bySeed}
		ordered = append(ordered, t.ID)
	}

	if len(ordered) < 2 {
		return nil, nil, crdberrors.WithHintf(
			fmt.Errorf("%w: need at least 2 teams with approved rosters, have %d", ErrInvalidInput, len(ordered)),
			"a team is schedulable once its roster of %d is approved", season.RosterSize,
		)
	}
	return eligible, schedule.RoundRobin(ordered), nil
}

func (s *WeekService) createMatchups(
	ctx context.Context,
	r store.Repositories,
	w week.Week,
	round schedule.Round,
	teams map[string]rosterTeam,
	rosterSize int,
	now time.Time,
) ([]week.Matchup, error) {
	out := make([]week.Matchup, 0, len(round))
	for _, pair := range round {
		a, b := teams[pair.TeamA], teams[pair.TeamB]

		m := week.Matchup{WeekID: w.ID, TeamAID: a.team.ID, TeamBID: b.team.ID, State: week.MatchupDraft}
		var err error
		if m.ID, err = s.ids.NewID(); err != nil {
			return nil, fmt.Errorf("generate matchup id: %w", err)
		}
		if err := r.Weeks.CreateMatchup(ctx, m); err != nil {
			return nil, classify(fmt.Errorf("create matchup: %w", err))
		}

		for seed := 1; seed <= rosterSize; seed++ {
			slotA, slotB := a.slots[seed], b.slots[seed]
			p := pairing.Pairing{
				MatchupID:       m.ID,
				SeedIndex:       seed,
				PlayerAID:       slotA.UserID,
				PlayerBID:       slotB.UserID,
				RatingAAtCreate: lockedRating(slotA),
				RatingBAtCreate: lockedRating(slotB),
				State:           pairing.StatePendingSchedule,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if p.ID, err = s.ids.NewID(); err != nil {
				return nil, fmt.Errorf("generate pairing id: %w", err)
			}
			if err := r.Pairings.Create(ctx, p); err != nil {
				return nil, classify(fmt.Errorf("create pairing: %w", err))
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func lockedRating(slot team.RosterSlot) int {
	if slot.RatingAtLock != nil {
		return *slot.RatingAtLock
	}
	return slot.RatingAtSubmit
}
