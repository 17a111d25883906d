package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/metrics"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// ScheduleInput proposes a new time when ProposedFor is set, otherwise
// confirms the current proposal.
type ScheduleInput struct {
	ProposedFor *time.Time
}

// ResolveInput is an admin override. Score wins over Winner when both are set.
type ResolveInput struct {
	Score  *pairing.Score
	Winner pairing.Side
}

// PairingView is a pairing with its owning week and the week's cutoffs.
type PairingView struct {
	Pairing   pairing.Pairing
	Matchup   week.Matchup
	WeekID    string
	WeekIndex int
	WeekState week.State
	Deadlines *deadline.Deadlines
}

type PairingService struct {
	store   store.Store
	logger  *logging.Logger
	metrics metrics.Metrics
	now     func() time.Time
}

func NewPairingService(st store.Store, logger *logging.Logger, m metrics.Metrics) *PairingService {
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &PairingService{
		store:   st,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func (s *PairingService) Get(ctx context.Context, c user.Capability, pairingID string) (PairingView, error) {
	var view PairingView
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		scope, err := loadPairingScope(ctx, r, pairingID, false)
		if err != nil {
			return err
		}

		admin := c.AdminOf(scope.season.LeagueID)
		if !admin && !scope.pairing.Participant(c.UserID) &&
			!c.Captains(scope.matchup.TeamAID) && !c.Captains(scope.matchup.TeamBID) {
			return fmt.Errorf("%w: %w", ErrForbidden, pairing.ErrNotParticipant)
		}

		view = PairingView{
			Pairing:   scope.pairing,
			Matchup:   scope.matchup,
			WeekID:    scope.week.ID,
			WeekIndex: scope.week.Index,
			WeekState: scope.week.State,
		}
		d, ok, err := weekDeadlines(scope.week, scope.season)
		if err != nil {
			return err
		}
		if ok {
			view.Deadlines = &d
		}
		return nil
	})
	return view, err
}

// UpdateSchedule proposes or confirms the pairing's play time.
func (s *PairingService) UpdateSchedule(ctx context.Context, c user.Capability, pairingID string, in ScheduleInput) (pairing.Pairing, error) {
	action := "schedule_confirm"
	if in.ProposedFor != nil {
		action = "schedule_propose"
		if in.ProposedFor.IsZero() {
			return pairing.Pairing{}, fmt.Errorf("%w: proposed time is required", ErrInvalidInput)
		}
	}

	return s.mutate(ctx, c, pairingID, action, func(scope *pairingScope, actor pairing.Actor, now time.Time) error {
		if err := checkWeekOpen(scope.week, actor.Admin); err != nil {
			return err
		}
		if err := checkDeadline(scope.week, scope.season, deadlineSchedule, now, actor.Admin); err != nil {
			return err
		}
		p := &scope.pairing
		if in.ProposedFor != nil {
			return p.ProposeSchedule(actor, *in.ProposedFor)
		}
		return p.ConfirmSchedule(actor)
	})
}

// ReportResult records a best-of-3 outcome. A differing second report disputes the pairing.
func (s *PairingService) ReportResult(ctx context.Context, c user.Capability, pairingID string, score pairing.Score) (pairing.Pairing, error) {
	return s.mutate(ctx, c, pairingID, "report", func(scope *pairingScope, actor pairing.Actor, now time.Time) error {
		if err := checkWeekOpen(scope.week, actor.Admin); err != nil {
			return err
		}
		return scope.pairing.Report(actor, score, now)
	})
}

// ConfirmResult finalizes the pairing on behalf of the non-reporting side.
func (s *PairingService) ConfirmResult(ctx context.Context, c user.Capability, pairingID string) (pairing.Pairing, error) {
	return s.mutate(ctx, c, pairingID, "confirm", func(scope *pairingScope, actor pairing.Actor, now time.Time) error {
		if err := checkWeekOpen(scope.week, actor.Admin); err != nil {
			return err
		}
		if err := checkDeadline(scope.week, scope.season, deadlineResults, now, actor.Admin); err != nil {
			return err
		}
		return scope.pairing.ConfirmResult(actor)
	})
}

func (s *PairingService) Dispute(ctx context.Context, c user.Capability, pairingID, note string) (pairing.Pairing, error) {
	return s.mutate(ctx, c, pairingID, "dispute", func(scope *pairingScope, actor pairing.Actor, now time.Time) error {
		if err := checkWeekOpen(scope.week, actor.Admin); err != nil {
			return err
		}
		if err := checkDeadline(scope.week, scope.season, deadlineResults, now, actor.Admin); err != nil {
			return err
		}
		return scope.pairing.Dispute(actor, note)
	})
}

// AdminResolve sets the final score directly. Only a FINAL week blocks it.
func (s *PairingService) AdminResolve(ctx context.Context, c user.Capability, pairingID string, in ResolveInput) (pairing.Pairing, error) {
	var score pairing.Score
	switch {
	case in.Score != nil:
		score = *in.Score
	case in.Winner.Valid():
		score = pairing.ScoreForWinner(in.Winner)
	default:
		return pairing.Pairing{}, fmt.Errorf("%w: score or winner is required", ErrInvalidInput)
	}

	return s.mutate(ctx, c, pairingID, "admin_resolve", func(scope *pairingScope, actor pairing.Actor, now time.Time) error {
		if !actor.Admin {
			return pairing.ErrNotAdmin
		}
		if err := checkWeekOpen(scope.week, true); err != nil {
			return err
		}
		return scope.pairing.Resolve(actor, score, now)
	})
}

type pairingTransition func(scope *pairingScope, actor pairing.Actor, now time.Time) error

// mutate runs one read-modify-write of a pairing under its row lock.
func (s *PairingService) mutate(ctx context.Context, c user.Capability, pairingID, action string, apply pairingTransition) (pairing.Pairing, error) {
	ctx, finish := traceOp(ctx, "usecase.PairingService."+action,
		attribute.String("pairing.id", pairingID),
		attribute.String("user.id", c.UserID),
	)
	var out pairing.Pairing
	var err error
	defer func() { finish(err) }()

	err = s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		scope, err := loadPairingScope(ctx, r, pairingID, true)
		if err != nil {
			return err
		}

		actor := pairing.Actor{UserID: c.UserID, Admin: c.AdminOf(scope.season.LeagueID)}
		if err := scope.pairing.Authorize(actor); err != nil {
			return classify(err)
		}

		now := s.now().UTC()
		if err := apply(&scope, actor, now); err != nil {
			return classify(err)
		}

		scope.pairing.UpdatedAt = now
		if err := r.Pairings.Update(ctx, scope.pairing); err != nil {
			return fmt.Errorf("update pairing: %w", err)
		}
		out = scope.pairing
		return nil
	})
	if err != nil {
		s.metrics.IncRejected(action, errorKind(err))
		s.logger.WarnContext(ctx, "pairing action rejected",
			"action", action,
			"pairing_id", pairingID,
			"user_id", c.UserID,
			"error", err,
		)
		return pairing.Pairing{}, err
	}

	s.metrics.IncPairingTransition(action, string(out.State))
	s.logger.InfoContext(ctx, "pairing action applied",
		"action", action,
		"pairing_id", out.ID,
		"state", out.State,
		"user_id", c.UserID,
	)
	return out, nil
}
