package postgres

import (
	"context"
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playhub-league/internal/domain/store"
	qb "github.com/riskibarqy/playhub-league/internal/platform/querybuilder"
)

var _ store.Store = (*Store)(nil)

// Store runs units of work against postgres. View reads straight from the
// pool; Update runs fn inside one transaction and commits only when fn
// succeeds.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	return fn(ctx, repositories(&session{q: s.db}))
}

func (s *Store) Update(ctx context.Context, fn store.TxFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return crdberrors.Wrap(err, "begin league tx")
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = crdberrors.CombineErrors(err, crdberrors.Wrap(rbErr, "rollback league tx"))
		}
	}()

	if err = fn(ctx, repositories(&session{q: tx, writable: true})); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return crdberrors.Wrap(err, "commit league tx")
	}
	return nil
}

type session struct {
	q        sqlx.ExtContext
	writable bool
}

func (s *session) write() error {
	if !s.writable {
		return store.ErrReadOnly
	}
	return nil
}

// locked adds FOR UPDATE to reads made inside Update, so rows read for a
// read-modify-write stay unchanged until commit. Callers lock in the order
// week, pairings, ratings.
func (s *session) locked(b *qb.SelectBuilder, of ...string) *qb.SelectBuilder {
	if s.writable {
		return b.ForUpdate(of...)
	}
	return b
}

// exec runs a write statement and maps unique violations to store.ErrDuplicate.
func (s *session) exec(ctx context.Context, what, query string, args ...any) (int64, error) {
	if err := s.write(); err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s: %w", store.ErrDuplicate, what, err)
		}
		return 0, crdberrors.Wrapf(err, "%s", what)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crdberrors.Wrapf(err, "%s rows affected", what)
	}
	return affected, nil
}

func repositories(s *session) store.Repositories {
	return store.Repositories{
		Leagues:       &LeagueRepository{s: s},
		Users:         &UserRepository{s: s},
		Teams:         &TeamRepository{s: s},
		Weeks:         &WeekRepository{s: s},
		Pairings:      &PairingRepository{s: s},
		Substitutions: &SubstitutionRepository{s: s},
		Ratings:       &RatingRepository{s: s},
		Points:        &PointsRepository{s: s},
	}
}
