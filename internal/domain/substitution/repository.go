package substitution

import "context"

// Repository describes substitution request persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, requestID string) (Request, bool, error)
	ListByPairing(ctx context.Context, pairingID string) ([]Request, error)
	// ListBySeason returns requests newest first.
	ListBySeason(ctx context.Context, seasonID string) ([]Request, error)
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
}
