package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var pairingColumns = []string{
	"id", "matchup_id", "seed_index", "player_a_id", "player_b_id",
	"rating_a_at_create", "rating_b_at_create", "state", "scheduled_for",
	"schedule_proposed_by", "schedule_confirmed_a", "schedule_confirmed_b",
	"score_a", "score_b", "reported_by", "reported_at", "confirmed_by_opponent",
	"disputed_by", "dispute_note", "created_at", "updated_at",
}

type PairingRepository struct {
	s *session
}

func (r *PairingRepository) GetByID(ctx context.Context, pairingID string) (pairing.Pairing, bool, error) {
	return r.getOne(ctx, qb.Select(pairingColumns...).From("pairings").Where(qb.Eq("id", pairingID)))
}

// GetForUpdate row-locks the pairing until the surrounding Update returns.
func (r *PairingRepository) GetForUpdate(ctx context.Context, pairingID string) (pairing.Pairing, bool, error) {
	if err := r.s.write(); err != nil {
		return pairing.Pairing{}, false, err
	}
	return r.getOne(ctx, qb.Select(pairingColumns...).From("pairings").Where(qb.Eq("id", pairingID)).ForUpdate())
}

func (r *PairingRepository) getOne(ctx context.Context, b *qb.SelectBuilder) (pairing.Pairing, bool, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return pairing.Pairing{}, false, fmt.Errorf("build get pairing query: %w", err)
	}

	var row pairingTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pairing.Pairing{}, false, nil
		}
		return pairing.Pairing{}, false, fmt.Errorf("get pairing: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PairingRepository) ListByMatchup(ctx context.Context, matchupID string) ([]pairing.Pairing, error) {
	return r.list(ctx, r.s.locked(qb.Select(pairingColumns...).From("pairings").
		Where(qb.Eq("matchup_id", matchupID)).
		OrderBy("seed_index")))
}

func (r *PairingRepository) ListByWeek(ctx context.Context, weekID string) ([]pairing.Pairing, error) {
	return r.list(ctx, r.byWeekQuery(weekID))
}

// byWeekQuery locks only the pairing rows of the join.
func (r *PairingRepository) byWeekQuery(weekID string) *qb.SelectBuilder {
	cols := make([]string, 0, len(pairingColumns))
	for _, c := range pairingColumns {
		cols = append(cols, "p."+c)
	}
	return r.s.locked(qb.Select(cols...).
		From("pairings p JOIN matchups m ON m.id = p.matchup_id").
		Where(qb.Eq("m.week_id", weekID)).
		OrderBy("m.seq", "p.seed_index"), "p")
}

func (r *PairingRepository) list(ctx context.Context, b *qb.SelectBuilder) ([]pairing.Pairing, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pairings query: %w", err)
	}

	var rows []pairingTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pairings: %w", err)
	}

	out := make([]pairing.Pairing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PairingRepository) Create(ctx context.Context, p pairing.Pairing) error {
	query, args, err := qb.InsertModel("pairings", pairingModel(p)).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert pairing query: %w", err)
	}
	_, err = r.s.exec(ctx, fmt.Sprintf("insert pairing %s", p.ID), query, args...)
	return err
}

func (r *PairingRepository) Update(ctx context.Context, p pairing.Pairing) error {
	m := pairingModel(p)
	query, args, err := qb.Update("pairings").
		Set("player_a_id", m.PlayerAID).
		Set("player_b_id", m.PlayerBID).
		Set("rating_a_at_create", m.RatingAAtCreate).
		Set("rating_b_at_create", m.RatingBAtCreate).
		Set("state", m.State).
		Set("scheduled_for", m.ScheduledFor).
		Set("schedule_proposed_by", m.ScheduleProposedBy).
		Set("schedule_confirmed_a", m.ScheduleConfirmedA).
		Set("schedule_confirmed_b", m.ScheduleConfirmedB).
		Set("score_a", m.ScoreA).
		Set("score_b", m.ScoreB).
		Set("reported_by", m.ReportedBy).
		Set("reported_at", m.ReportedAt).
		Set("confirmed_by_opponent", m.ConfirmedByOpponent).
		Set("disputed_by", m.DisputedBy).
		Set("dispute_note", m.DisputeNote).
		Set("updated_at", m.UpdatedAt).
		Where(qb.Eq("id", p.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pairing query: %w", err)
	}
	affected, err := r.s.exec(ctx, "update pairing", query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("pairing %s not found", p.ID)
	}
	return nil
}
