package pairing

import "context"

// Repository describes pairing persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, pairingID string) (Pairing, bool, error)
	// GetForUpdate loads a pairing and holds it exclusively until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, pairingID string) (Pairing, bool, error)
	ListByMatchup(ctx context.Context, matchupID string) ([]Pairing, error)
	ListByWeek(ctx context.Context, weekID string) ([]Pairing, error)
	Create(ctx context.Context, p Pairing) error
	Update(ctx context.Context, p Pairing) error
}
