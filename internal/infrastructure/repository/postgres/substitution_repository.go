package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var substitutionColumns = []string{
	"id", "pairing_id", "season_id", "side", "replaced_user_id", "sub_user_id",
	"replaced_rating_at_request", "sub_rating_at_request", "status",
	"requested_by", "requested_at", "decided_by", "decided_at", "note",
}

type SubstitutionRepository struct {
	s *session
}

func (r *SubstitutionRepository) GetByID(ctx context.Context, requestID string) (substitution.Request, bool, error) {
	query, args, err := qb.Select(substitutionColumns...).From("substitution_requests").
		Where(qb.Eq("id", requestID)).
		ToSQL()
	if err != nil {
		return substitution.Request{}, false, fmt.Errorf("build get substitution query: %w", err)
	}

	var row substitutionTableModel
	if err := sqlx.GetContext(ctx, r.s.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return substitution.Request{}, false, nil
		}
		return substitution.Request{}, false, fmt.Errorf("get substitution: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SubstitutionRepository) ListByPairing(ctx context.Context, pairingID string) ([]substitution.Request, error) {
	return r.list(ctx, qb.Select(substitutionColumns...).From("substitution_requests").
		Where(qb.Eq("pairing_id", pairingID)).
		OrderBy("seq"))
}

// ListBySeason returns the newest requests first.
func (r *SubstitutionRepository) ListBySeason(ctx context.Context, seasonID string) ([]substitution.Request, error) {
	return r.list(ctx, qb.Select(substitutionColumns...).From("substitution_requests").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("requested_at DESC", "seq DESC"))
}

func (r *SubstitutionRepository) list(ctx context.Context, b *qb.SelectBuilder) ([]substitution.Request, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list substitutions query: %w", err)
	}

	var rows []substitutionTableModel
	if err := sqlx.SelectContext(ctx, r.s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list substitutions: %w", err)
	}

	out := make([]substitution.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SubstitutionRepository) Create(ctx context.Context, sr substitution.Request) error {
	query, args, err := qb.InsertModel("substitution_requests", substitutionModel(sr)).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert substitution query: %w", err)
	}
	_, err = r.s.exec(ctx, fmt.Sprintf("insert substitution %s", sr.ID), query, args...)
	return err
}

func (r *SubstitutionRepository) Update(ctx context.Context, sr substitution.Request) error {
	m := substitutionModel(sr)
	query, args, err := qb.Update("substitution_requests").
		Set("status", m.Status).
		Set("decided_by", m.DecidedBy).
		Set("decided_at", m.DecidedAt).
		Set("note", m.Note).
		Where(qb.Eq("id", sr.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update substitution query: %w", err)
	}
	affected, err := r.s.exec(ctx, "update substitution", query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("substitution %s not found", sr.ID)
	}
	return nil
}
