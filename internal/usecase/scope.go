package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crdberrors "github.com/cockroachdb/errors"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

// pairingScope is a pairing with the entities that own it.
type pairingScope struct {
	pairing pairing.Pairing
	matchup week.Matchup
	week    week.Week
	season  league.Season
}

func loadPairingScope(ctx context.Context, r store.Repositories, pairingID string, forUpdate bool) (pairingScope, error) {
	pairingID = strings.TrimSpace(pairingID)
	if pairingID == "" {
		return pairingScope{}, fmt.Errorf("%w: pairing id is required", ErrInvalidInput)
	}

	get := r.Pairings.GetByID
	if forUpdate {
		get = r.Pairings.GetForUpdate
	}
	p, exists, err := get(ctx, pairingID)
	if err != nil {
		return pairingScope{}, fmt.Errorf("get pairing: %w", err)
	}
	if !exists {
		return pairingScope{}, fmt.Errorf("%w: pairing=%s", ErrNotFound, pairingID)
	}

	m, exists, err := r.Weeks.GetMatchup(ctx, p.MatchupID)
	if err != nil {
		return pairingScope{}, fmt.Errorf("get matchup: %w", err)
	}
	if !exists {
		return pairingScope{}, fmt.Errorf("%w: matchup=%s", ErrNotFound, p.MatchupID)
	}

	w, exists, err := r.Weeks.GetByID(ctx, m.WeekID)
	if err != nil {
		return pairingScope{}, fmt.Errorf("get week: %w", err)
	}
	if !exists {
		return pairingScope{}, fmt.Errorf("%w: week=%s", ErrNotFound, m.WeekID)
	}

	season, err := loadSeason(ctx, r, w.SeasonID)
	if err != nil {
		return pairingScope{}, err
	}

	return pairingScope{pairing: p, matchup: m, week: w, season: season}, nil
}

// loadSeason returns the season with rule defaults applied.
func loadSeason(ctx context.Context, r store.Repositories, seasonID string) (league.Season, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return league.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	s, exists, err := r.Leagues.GetSeason(ctx, seasonID)
	if err != nil {
		return league.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return league.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	return s.WithDefaults(), nil
}

func requireAdmin(c user.Capability, leagueID string) error {
	if !c.AdminOf(leagueID) {
		return fmt.Errorf("%w: league admin required", ErrForbidden)
	}
	return nil
}

// checkWeekOpen rejects mutations on a FINAL week, and on any non-OPEN week
// unless the caller is an admin.
func checkWeekOpen(w week.Week, admin bool) error {
	if w.IsFinal() {
		return crdberrors.WithHintf(
			fmt.Errorf("%w: week %d is final", ErrConflict, w.Index),
			"week %s was finalized; results can no longer change", w.ID,
		)
	}
	if !w.IsOpen() && !admin {
		return crdberrors.WithHintf(
			fmt.Errorf("%w: week %d is not open", ErrConflict, w.Index),
			"week state is %s", w.State,
		)
	}
	return nil
}

// weekDeadlines computes the cutoffs of an opened week. ok is false for a
// week that has never been opened.
func weekDeadlines(w week.Week, season league.Season) (deadline.Deadlines, bool, error) {
	if w.OpensAt == nil {
		return deadline.Deadlines{}, false, nil
	}
	d, err := deadline.Compute(*w.OpensAt, season.Timezone, season.DeadlineDays())
	if err != nil {
		return deadline.Deadlines{}, false, classify(err)
	}
	return d, true, nil
}

type deadlineKind string

const (
	deadlineSubstitution deadlineKind = "substitution"
	deadlineSchedule     deadlineKind = "schedule"
	deadlineResults      deadlineKind = "results"
)

// checkDeadline rejects non-admin callers once the named cutoff has passed.
func checkDeadline(w week.Week, season league.Season, kind deadlineKind, now time.Time, admin bool) error {
	if admin {
		return nil
	}
	d, ok, err := weekDeadlines(w, season)
	if err != nil || !ok {
		return err
	}

	var at time.Time
	var local string
	switch kind {
	case deadlineSubstitution:
		at, local = d.Substitution, d.SubstitutionLocal
	case deadlineSchedule:
		at, local = d.Schedule, d.ScheduleLocal
	default:
		at, local = d.Results, d.ResultsLocal
	}

	if deadline.IsPast(now, at) {
		return crdberrors.WithHintf(
			fmt.Errorf("%w: %s deadline has passed", ErrConflict, kind),
			"%s deadline was %s (%s)", kind, local, d.Timezone,
		)
	}
	return nil
}

// ensureRatings returns the hidden rating of every user. With create set,
// missing rows are inserted at the default; a row another writer inserted
// first is read back instead of being overwritten.
func ensureRatings(ctx context.Context, r store.Repositories, leagueID string, userIDs []string, now time.Time, create bool) (map[string]int, error) {
	rows, err := r.Ratings.ListByUsers(ctx, leagueID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	out := make(map[string]int, len(userIDs))
	for _, row := range rows {
		out[row.UserID] = row.Hidden
	}
	for _, userID := range userIDs {
		if _, ok := out[userID]; ok {
			continue
		}
		out[userID] = rating.Default
		if !create {
			continue
		}
		created, err := r.Ratings.CreateIfAbsent(ctx, rating.Rating{
			LeagueID:  leagueID,
			UserID:    userID,
			Hidden:    rating.Default,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create default rating: %w", err)
		}
		if created {
			continue
		}
		current, exists, err := r.Ratings.Get(ctx, leagueID, userID)
		if err != nil {
			return nil, fmt.Errorf("get rating: %w", err)
		}
		if exists {
			out[userID] = current.Hidden
		}
	}

	return out, nil
}

// resolveUser finds a user by id, falling back to email.
func resolveUser(ctx context.Context, r store.Repositories, userID, email string) (user.User, error) {
	userID, email = strings.TrimSpace(userID), user.NormalizeEmail(email)
	if userID == "" && email == "" {
		return user.User{}, fmt.Errorf("%w: user id or email is required", ErrInvalidInput)
	}

	if userID != "" {
		u, exists, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return user.User{}, fmt.Errorf("get user: %w", err)
		}
		if exists {
			return u, nil
		}
		if email == "" {
			return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
		}
	}

	u, exists, err := r.Users.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: email=%s", ErrNotFound, email)
	}
	return u, nil
}
