package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrRuleViolation         = errors.New("rule violation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// PendingPairing identifies a pairing that blocks week finalization.
type PendingPairing struct {
	PairingID string
	MatchupID string
	SeedIndex int
	State     pairing.State
}

// NotFinalError lists every pairing of a week that has not reached FINAL.
type NotFinalError struct {
	WeekID   string
	Pairings []PendingPairing
}

func (e *NotFinalError) Error() string {
	ids := make([]string, 0, len(e.Pairings))
	for _, p := range e.Pairings {
		ids = append(ids, fmt.Sprintf("%s(seed %d, %s)", p.PairingID, p.SeedIndex, p.State))
	}
	return fmt.Sprintf("%s: week %s has %d pairing(s) not final: %s",
		ErrConflict, e.WeekID, len(e.Pairings), strings.Join(ids, ", "))
}

func (e *NotFinalError) Unwrap() error {
	return ErrConflict
}

// classify tags a domain error with the use-case error kind it belongs to.
// Errors that already carry a kind, or that are unknown, pass through.
func classify(err error) error {
	if err == nil || errorKind(err) != "" {
		return err
	}

	switch {
	case errors.Is(err, pairing.ErrNotParticipant),
		errors.Is(err, pairing.ErrNotAdmin):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, pairing.ErrFinal),
		errors.Is(err, pairing.ErrNoProposal),
		errors.Is(err, pairing.ErrNoReport),
		errors.Is(err, pairing.ErrOwnReport),
		errors.Is(err, substitution.ErrNotPending),
		errors.Is(err, substitution.ErrAlreadyApproved),
		errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, pairing.ErrInvalidScore),
		errors.Is(err, pairing.ErrNoteTooLong),
		errors.Is(err, substitution.ErrSameUser),
		errors.Is(err, team.ErrRosterSize),
		errors.Is(err, team.ErrSeedOutOfRange),
		errors.Is(err, team.ErrDuplicateSeed),
		errors.Is(err, team.ErrDuplicateUser),
		errors.Is(err, deadline.ErrInvalidTimezone),
		errors.Is(err, deadline.ErrInvalidWeekday):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, substitution.ErrRatingCeiling):
		return fmt.Errorf("%w: %w", ErrRuleViolation, err)
	default:
		return err
	}
}

// errorKind names the use-case error kind of err, or "" when it has none.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrRuleViolation):
		return "rule_violation"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency_unavailable"
	default:
		return ""
	}
}
