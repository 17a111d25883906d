package league

import "context"

// Repository describes league and season persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetSeason(ctx context.Context, seasonID string) (Season, bool, error)
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
}
