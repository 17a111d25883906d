package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/domain/team"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var (
	teamColumns = []string{"id", "season_id", "name", "captain_user_id", "roster_submitted_at", "roster_approved_at"}
	slotColumns = []string{"team_id", "seed_index", "user_id", "rating_at_submit", "rating_at_lock", "active"}
)

type TeamRepository struct {
	s *session
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) ListBySeason(ctx context.Context, seasonID string) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by season: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) ListSlots(ctx context.Context, teamID string) ([]team.RosterSlot, error) {
	query, args, err := qb.Select(slotColumns...).From("roster_slots").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("seed_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster slots query: %w", err)
	}

	var rows []rosterSlotTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster slots: %w", err)
	}

	out := make([]team.RosterSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ReplaceRoster swaps every slot of the team and clears its approval.
func (r *TeamRepository) ReplaceRoster(ctx context.Context, teamID string, slots []team.RosterSlot, submittedAt time.Time) error {
	if err := r.s.write(); err != nil {
		return err
	}

	query, args, err := qb.Update("teams").
		Set("roster_submitted_at", submittedAt.UTC()).
		SetExpr("roster_approved_at", "NULL").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build submit roster query: %w", err)
	}
	affected, err := r.s.exec(ctx, "submit roster", query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	query, args, err = qb.DeleteFrom("roster_slots").Where(qb.Eq("team_id", teamID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear roster query: %w", err)
	}
	if _, err := r.s.exec(ctx, "clear roster", query, args...); err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}

	insert := qb.InsertInto("roster_slots").Columns(slotColumns...)
	for _, slot := range slots {
		insert = insert.Values(teamID, slot.SeedIndex, slot.UserID, slot.RatingAtSubmit, nil, slot.Active)
	}
	query, args, err = insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert roster query: %w", err)
	}
	_, err = r.s.exec(ctx, "insert roster", query, args...)
	return err
}

// LockRoster freezes each slot's submitted rating and marks the roster approved.
func (r *TeamRepository) LockRoster(ctx context.Context, teamID string, approvedAt time.Time) error {
	query, args, err := qb.Update("teams").
		Set("roster_approved_at", approvedAt.UTC()).
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build approve roster query: %w", err)
	}
	affected, err := r.s.exec(ctx, "approve roster", query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	query, args, err = qb.Update("roster_slots").
		SetExpr("rating_at_lock", "rating_at_submit").
		Where(qb.Eq("team_id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock roster query: %w", err)
	}
	_, err = r.s.exec(ctx, "lock roster", query, args...)
	return err
}
