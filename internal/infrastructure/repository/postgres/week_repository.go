package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/domain/week"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var (
	weekColumns    = []string{"id", "season_id", "week_index", "state", "opens_at", "locks_at", "created_at"}
	matchupColumns = []string{"id", "week_id", "team_a_id", "team_b_id", "state"}
)

type WeekRepository struct {
	s *session
}

func (r *WeekRepository) GetByID(ctx context.Context, weekID string) (week.Week, bool, error) {
	return r.getOne(ctx, qb.Select(weekColumns...).From("weeks").Where(qb.Eq("id", weekID)))
}

// GetForUpdate row-locks the week until the surrounding Update returns.
func (r *WeekRepository) GetForUpdate(ctx context.Context, weekID string) (week.Week, bool, error) {
	if err := r.s.write(); err != nil {
		return week.Week{}, false, err
	}
	return r.getOne(ctx, qb.Select(weekColumns...).From("weeks").Where(qb.Eq("id", weekID)).ForUpdate())
}

func (r *WeekRepository) GetByIndex(ctx context.Context, seasonID string, index int) (week.Week, bool, error) {
	return r.getOne(ctx, qb.Select(weekColumns...).From("weeks").Where(
		qb.Eq("season_id", seasonID),
		qb.Eq("week_index", index),
	))
}

func (r *WeekRepository) getOne(ctx context.Context, b *qb.SelectBuilder) (week.Week, bool, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return week.Week{}, false, fmt.Errorf("build get week query: %w", err)
	}

	var row weekTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *WeekRepository) ListBySeason(ctx context.Context, seasonID string) ([]week.Week, error) {
	query, args, err := qb.Select(weekColumns...).From("weeks").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("week_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weeks query: %w", err)
	}

	var rows []weekTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weeks by season: %w", err)
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *WeekRepository) Create(ctx context.Context, w week.Week) error {
	query, args, err := qb.InsertModel("weeks", weekModel(w)).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert week query: %w", err)
	}
	_, err = r.s.exec(ctx, fmt.Sprintf("insert week %s", w.ID), query, args...)
	return err
}

func (r *WeekRepository) Update(ctx context.Context, w week.Week) error {
	m := weekModel(w)
	query, args, err := qb.Update("weeks").
		Set("state", m.State).
		Set("opens_at", m.OpensAt).
		Set("locks_at", m.LocksAt).
		Where(qb.Eq("id", w.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update week query: %w", err)
	}
	affected, err := r.s.exec(ctx, "update week", query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("week %s not found", w.ID)
	}
	return nil
}

// DeleteBySeason drops every week of the season; matchups, pairings and
// substitution requests go with them through ON DELETE CASCADE.
func (r *WeekRepository) DeleteBySeason(ctx context.Context, seasonID string) error {
	query, args, err := qb.DeleteFrom("weeks").Where(qb.Eq("season_id", seasonID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete weeks query: %w", err)
	}
	_, err = r.s.exec(ctx, "delete weeks", query, args...)
	return err
}

func (r *WeekRepository) GetMatchup(ctx context.Context, matchupID string) (week.Matchup, bool, error) {
	query, args, err := qb.Select(matchupColumns...).From("matchups").
		Where(qb.Eq("id", matchupID)).
		ToSQL()
	if err != nil {
		return week.Matchup{}, false, fmt.Errorf("build get matchup query: %w", err)
	}

	var row matchupTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Matchup{}, false, nil
		}
		return week.Matchup{}, false, fmt.Errorf("get matchup: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *WeekRepository) ListMatchups(ctx context.Context, weekID string) ([]week.Matchup, error) {
	query, args, err := qb.Select(matchupColumns...).From("matchups").
		Where(qb.Eq("week_id", weekID)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matchups query: %w", err)
	}

	var rows []matchupTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matchups: %w", err)
	}

	out := make([]week.Matchup, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *WeekRepository) CreateMatchup(ctx context.Context, m week.Matchup) error {
	query, args, err := qb.InsertModel("matchups", matchupTableModel{
		ID:      m.ID,
		WeekID:  m.WeekID,
		TeamAID: m.TeamAID,
		TeamBID: m.TeamBID,
		State:   string(m.State),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert matchup query: %w", err)
	}
	_, err = r.s.exec(ctx, fmt.Sprintf("insert matchup %s", m.ID), query, args...)
	return err
}

func (r *WeekRepository) SetMatchupsState(ctx context.Context, weekID string, state week.MatchupState) error {
	query, args, err := qb.Update("matchups").
		Set("state", string(state)).
		Where(qb.Eq("week_id", weekID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update matchups state query: %w", err)
	}
	_, err = r.s.exec(ctx, "update matchups state", query, args...)
	return err
}

func (r *WeekRepository) DeleteMatchups(ctx context.Context, weekID string) error {
	query, args, err := qb.DeleteFrom("matchups").Where(qb.Eq("week_id", weekID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete matchups query: %w", err)
	}
	_, err = r.s.exec(ctx, "delete matchups", query, args...)
	return err
}
