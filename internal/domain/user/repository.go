package user

import "context"

// Repository is the user directory.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	ListByIDs(ctx context.Context, userIDs []string) ([]User, error)
}
