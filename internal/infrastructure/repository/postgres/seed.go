package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

// BootstrapSeed loads seed into an empty database. It is a no-op once any
// league exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, seed memory.Seed) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	named := func(what, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", what, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	for _, l := range seed.Leagues {
		if err := named("league "+l.ID, `
INSERT INTO leagues (id, name, created_at)
VALUES (:id, :name, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         l.ID,
			"name":       l.Name,
			"created_at": l.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
	}

	for _, s := range seed.Seasons {
		s = s.WithDefaults()
		if err := named("season "+s.ID, `
INSERT INTO league_seasons (
	id, league_id, name, roster_size, regular_weeks, timezone,
	sub_deadline_day, schedule_deadline_day, results_deadline_day,
	rating_min, rating_max, k_factor, team_rating_cap, created_at
)
VALUES (
	:id, :league_id, :name, :roster_size, :regular_weeks, :timezone,
	:sub_deadline_day, :schedule_deadline_day, :results_deadline_day,
	:rating_min, :rating_max, :k_factor, :team_rating_cap, :created_at
)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":                    s.ID,
			"league_id":             s.LeagueID,
			"name":                  s.Name,
			"roster_size":           s.RosterSize,
			"regular_weeks":         s.RegularWeeks,
			"timezone":              s.Timezone,
			"sub_deadline_day":      int(s.SubDeadlineDay),
			"schedule_deadline_day": int(s.ScheduleDeadlineDay),
			"results_deadline_day":  int(s.ResultsDeadlineDay),
			"rating_min":            s.RatingMin,
			"rating_max":            s.RatingMax,
			"k_factor":              s.KFactor,
			"team_rating_cap":       s.TeamRatingCap,
			"created_at":            s.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
	}

	insertIgnore := func(what string, b *qb.InsertBuilder) error {
		query, args, err := b.ToSQL()
		if err != nil {
			return fmt.Errorf("build seed %s query: %w", what, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	if len(seed.Users) > 0 {
		users := qb.InsertInto("users").Columns("id", "email", "display_name").OnConflictDoNothing("id")
		for _, u := range seed.Users {
			users.Values(u.ID, u.Email, u.DisplayName)
		}
		if err := insertIgnore("users", users); err != nil {
			return err
		}
	}

	if len(seed.Members) > 0 {
		members := qb.InsertInto("league_members").Columns("league_id", "user_id", "role").OnConflictDoNothing("league_id", "user_id")
		for _, m := range seed.Members {
			members.Values(m.LeagueID, m.UserID, string(m.Role))
		}
		if err := insertIgnore("members", members); err != nil {
			return err
		}
	}

	for _, t := range seed.Teams {
		if err := named("team "+t.ID, `
INSERT INTO teams (id, season_id, name, captain_user_id, roster_submitted_at, roster_approved_at)
VALUES (:id, :season_id, :name, :captain_user_id, :roster_submitted_at, :roster_approved_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":                  t.ID,
			"season_id":           t.SeasonID,
			"name":                t.Name,
			"captain_user_id":     t.CaptainUserID,
			"roster_submitted_at": nullTime(t.RosterSubmittedAt),
			"roster_approved_at":  nullTime(t.RosterApprovedAt),
		}); err != nil {
			return err
		}
	}

	for _, s := range seed.Slots {
		if err := named(fmt.Sprintf("slot %s/%d", s.TeamID, s.SeedIndex), `
INSERT INTO roster_slots (team_id, seed_index, user_id, rating_at_submit, rating_at_lock, active)
VALUES (:team_id, :seed_index, :user_id, :rating_at_submit, :rating_at_lock, :active)
ON CONFLICT (team_id, seed_index) DO NOTHING`, map[string]any{
			"team_id":          s.TeamID,
			"seed_index":       s.SeedIndex,
			"user_id":          s.UserID,
			"rating_at_submit": s.RatingAtSubmit,
			"rating_at_lock":   nullInt(s.RatingAtLock),
			"active":           s.Active,
		}); err != nil {
			return err
		}
	}

	repos := repositories(&session{q: tx, writable: true})
	for _, r := range seed.Ratings {
		if err := repos.Ratings.Upsert(ctx, r); err != nil {
			return fmt.Errorf("seed rating %s: %w", r.UserID, err)
		}
	}
	for _, w := range seed.Weeks {
		if err := repos.Weeks.Create(ctx, w); err != nil {
			return fmt.Errorf("seed week %s: %w", w.ID, err)
		}
	}
	for _, m := range seed.Matchups {
		if err := repos.Weeks.CreateMatchup(ctx, m); err != nil {
			return fmt.Errorf("seed matchup %s: %w", m.ID, err)
		}
	}
	for _, p := range seed.Pairings {
		if err := repos.Pairings.Create(ctx, p); err != nil {
			return fmt.Errorf("seed pairing %s: %w", p.ID, err)
		}
	}
	for _, sr := range seed.Substitutions {
		if err := repos.Substitutions.Create(ctx, sr); err != nil {
			return fmt.Errorf("seed substitution %s: %w", sr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
