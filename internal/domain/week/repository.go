package week

import "context"

// Repository describes week and matchup persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, weekID string) (Week, bool, error)
	// GetForUpdate loads a week and holds it exclusively until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, weekID string) (Week, bool, error)
	GetByIndex(ctx context.Context, seasonID string, index int) (Week, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Week, error)
	Create(ctx context.Context, w Week) error
	Update(ctx context.Context, w Week) error
	// DeleteBySeason removes every week of a season with its matchups and pairings.
	DeleteBySeason(ctx context.Context, seasonID string) error

	GetMatchup(ctx context.Context, matchupID string) (Matchup, bool, error)
	ListMatchups(ctx context.Context, weekID string) ([]Matchup, error)
	CreateMatchup(ctx context.Context, m Matchup) error
	SetMatchupsState(ctx context.Context, weekID string, state MatchupState) error
	// DeleteMatchups removes a week's matchups with their pairings.
	DeleteMatchups(ctx context.Context, weekID string) error
}
