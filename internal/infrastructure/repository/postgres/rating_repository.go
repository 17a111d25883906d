package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var (
	ratingColumns      = []string{"league_id", "user_id", "hidden", "updated_at"}
	ratingEventColumns = []string{
		"id", "league_id", "season_id", "week_id", "user_id", "kind",
		"rating_before", "rating_after", "delta", "reason", "created_at",
	}
	pointsEventColumns = []string{
		"id", "season_id", "week_id", "matchup_id", "pairing_id", "team_id",
		"user_id", "kind", "points", "reason", "created_at",
	}
)

type RatingRepository struct {
	s *session
}

func (r *RatingRepository) Get(ctx context.Context, leagueID, userID string) (rating.Rating, bool, error) {
	query, args, err := r.s.locked(qb.Select(ratingColumns...).From("ratings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		)).
		ToSQL()
	if err != nil {
		return rating.Rating{}, false, fmt.Errorf("build get rating query: %w", err)
	}

	var row ratingTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.Rating{}, false, nil
		}
		return rating.Rating{}, false, fmt.Errorf("get rating: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *RatingRepository) ListByUsers(ctx context.Context, leagueID string, userIDs []string) ([]rating.Rating, error) {
	if len(userIDs) == 0 {
		return []rating.Rating{}, nil
	}

	query, args, err := r.listByUsersQuery(leagueID, userIDs).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ratings query: %w", err)
	}

	var rows []ratingTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	out := make([]rating.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// listByUsersQuery orders by user id so concurrent writers lock rating rows
// in the same order.
func (r *RatingRepository) listByUsersQuery(leagueID string, userIDs []string) *qb.SelectBuilder {
	return r.s.locked(qb.Select(ratingColumns...).From("ratings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Any("user_id", pq.Array(userIDs)),
		).
		OrderBy("user_id"))
}

func (r *RatingRepository) Upsert(ctx context.Context, v rating.Rating) error {
	query, args, err := qb.InsertModel("ratings", ratingTableModel{
		LeagueID:  v.LeagueID,
		UserID:    v.UserID,
		Hidden:    v.Hidden,
		UpdatedAt: v.UpdatedAt.UTC(),
	}).OnConflictUpdate([]string{"league_id", "user_id"}, "hidden", "updated_at").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert rating query: %w", err)
	}
	_, err = r.s.exec(ctx, "upsert rating", query, args...)
	return err
}

// CreateIfAbsent inserts v unless the row exists. A row committed by a
// concurrent transaction is left untouched and reported as not created.
func (r *RatingRepository) CreateIfAbsent(ctx context.Context, v rating.Rating) (bool, error) {
	query, args, err := qb.InsertModel("ratings", ratingTableModel{
		LeagueID:  v.LeagueID,
		UserID:    v.UserID,
		Hidden:    v.Hidden,
		UpdatedAt: v.UpdatedAt.UTC(),
	}).OnConflictDoNothing("league_id", "user_id").ToSQL()
	if err != nil {
		return false, fmt.Errorf("build create rating query: %w", err)
	}
	affected, err := r.s.exec(ctx, "create rating", query, args...)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *RatingRepository) AppendEvents(ctx context.Context, events []rating.Event) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	insert := qb.InsertInto("rating_events").Columns(ratingEventColumns...)
	for _, e := range events {
		insert = insert.Values(e.ID, e.LeagueID, e.SeasonID, e.WeekID, e.UserID, string(e.Kind),
			e.Before, e.After, e.Delta, e.Reason, e.CreatedAt.UTC())
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert rating events query: %w", err)
	}
	_, err = r.s.exec(ctx, "insert rating events", query, args...)
	return err
}

func (r *RatingRepository) ListEventsByUser(ctx context.Context, leagueID, userID string) ([]rating.Event, error) {
	query, args, err := qb.Select(ratingEventColumns...).From("rating_events").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rating events query: %w", err)
	}

	var rows []ratingEventTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rating events: %w", err)
	}

	out := make([]rating.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type PointsRepository struct {
	s *session
}

func (r *PointsRepository) AppendPoints(ctx context.Context, events []standing.PointsEvent) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	insert := qb.InsertInto("points_events").Columns(pointsEventColumns...)
	for _, e := range events {
		insert = insert.Values(e.ID, e.SeasonID, e.WeekID, e.MatchupID, e.PairingID, e.TeamID,
			e.UserID, string(e.Kind), e.Points, e.Reason, e.CreatedAt.UTC())
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert points events query: %w", err)
	}
	_, err = r.s.exec(ctx, "insert points events", query, args...)
	return err
}

func (r *PointsRepository) ListBySeason(ctx context.Context, seasonID string) ([]standing.PointsEvent, error) {
	return r.list(ctx, qb.Eq("season_id", seasonID))
}

func (r *PointsRepository) ListByWeek(ctx context.Context, weekID string) ([]standing.PointsEvent, error) {
	return r.list(ctx, qb.Eq("week_id", weekID))
}

func (r *PointsRepository) list(ctx context.Context, cond qb.Condition) ([]standing.PointsEvent, error) {
	query, args, err := qb.Select(pointsEventColumns...).From("points_events").
		Where(cond).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list points events query: %w", err)
	}

	var rows []pointsEventTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list points events: %w", err)
	}

	out := make([]standing.PointsEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
