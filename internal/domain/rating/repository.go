package rating

import "context"

// Repository describes rating persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, leagueID, userID string) (Rating, bool, error)
	ListByUsers(ctx context.Context, leagueID string, userIDs []string) ([]Rating, error)
	Upsert(ctx context.Context, r Rating) error
	// CreateIfAbsent inserts r only when no row exists and reports whether it did.
	CreateIfAbsent(ctx context.Context, r Rating) (bool, error)
	AppendEvents(ctx context.Context, events []Event) error
	ListEventsByUser(ctx context.Context, leagueID, userID string) ([]Event, error)
}
