package team

import (
	"context"
	"time"
)

// Repository describes team and roster persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Team, error)
	ListSlots(ctx context.Context, teamID string) ([]RosterSlot, error)
	ReplaceRoster(ctx context.Context, teamID string, slots []RosterSlot, submittedAt time.Time) error
	LockRoster(ctx context.Context, teamID string, approvedAt time.Time) error
}
