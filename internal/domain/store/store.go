package store

import (
	"context"
	"errors"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

var (
	// ErrReadOnly is returned by writes attempted inside View.
	ErrReadOnly = errors.New("write attempted in read-only transaction")
	// ErrDuplicate is returned when a write violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate key")
)

// Repositories are bound to a single store transaction.
type Repositories struct {
	Leagues       league.Repository
	Users         user.Repository
	Teams         team.Repository
	Weeks         week.Repository
	Pairings      pairing.Repository
	Substitutions substitution.Repository
	Ratings       rating.Repository
	Points        standing.Repository
}

// TxFunc is the unit of work run by a Store.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store runs units of work. Update is atomic: either every write made by fn
// becomes visible or none does. Rows loaded through GetForUpdate stay locked
// against concurrent Update calls until fn returns.
type Store interface {
	View(ctx context.Context, fn TxFunc) error
	Update(ctx context.Context, fn TxFunc) error
}
