package standing

import "context"

// Repository is the points ledger.
type Repository interface {
	AppendPoints(ctx context.Context, events []PointsEvent) error
	ListBySeason(ctx context.Context, seasonID string) ([]PointsEvent, error)
	ListByWeek(ctx context.Context, weekID string) ([]PointsEvent, error)
}
