package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/metrics"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// SubstitutionInput names the substitute by id or email.
type SubstitutionInput struct {
	SubUserID string
	SubEmail  string
}

type SubstitutionService struct {
	store   store.Store
	ids     id.Generator
	logger  *logging.Logger
	metrics metrics.Metrics
	now     func() time.Time
}

func NewSubstitutionService(st store.Store, ids id.Generator, logger *logging.Logger, m metrics.Metrics) *SubstitutionService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &SubstitutionService{
		store:   st,
		ids:     ids,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Request files a PENDING substitution for the side the caller captains.
func (s *SubstitutionService) Request(ctx context.Context, c user.Capability, pairingID string, in SubstitutionInput) (substitution.Request, error) {
	ctx, finish := traceOp(ctx, "usecase.SubstitutionService.Request", attribute.String("pairing.id", pairingID))
	var out substitution.Request
	var err error
	defer func() { finish(err) }()

	err = s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		scope, err := loadPairingScope(ctx, r, pairingID, true)
		if err != nil {
			return err
		}

		admin := c.AdminOf(scope.season.LeagueID)
		captainsA, captainsB := c.Captains(scope.matchup.TeamAID), c.Captains(scope.matchup.TeamBID)
		if !admin && !captainsA && !captainsB {
			return fmt.Errorf("%w: captain of a team in this matchup or league admin required", ErrForbidden)
		}
		if scope.pairing.IsFinal() {
			return classify(pairing.ErrFinal)
		}
		if err := checkWeekOpen(scope.week, admin); err != nil {
			return err
		}
		now := s.now().UTC()
		if err := checkDeadline(scope.week, scope.season, deadlineSubstitution, now, admin); err != nil {
			return err
		}

		side := substitution.InferSide(captainsA, captainsB)
		replacedID := scope.pairing.PlayerOn(side)
		sub, err := resolveUser(ctx, r, in.SubUserID, in.SubEmail)
		if err != nil {
			return err
		}
		if sub.ID == replacedID {
			return classify(substitution.ErrSameUser)
		}

		existing, err := r.Substitutions.ListByPairing(ctx, scope.pairing.ID)
		if err != nil {
			return fmt.Errorf("list substitution requests: %w", err)
		}
		for _, e := range existing {
			if e.Status == substitution.StatusApproved {
				return classify(fmt.Errorf("%w: request=%s", substitution.ErrAlreadyApproved, e.ID))
			}
		}

		hidden, err := ensureRatings(ctx, r, scope.season.LeagueID, []string{replacedID, sub.ID}, now, true)
		if err != nil {
			return err
		}
		bounds := scope.season.DisplayBounds()
		replacedDisplayed := rating.Displayed(hidden[replacedID], bounds)
		subDisplayed := rating.Displayed(hidden[sub.ID], bounds)
		if err := substitution.CheckCeiling(subDisplayed, replacedDisplayed); err != nil {
			return classify(err)
		}

		requestID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate substitution id: %w", err)
		}
		out = substitution.Request{
			ID:                      requestID,
			PairingID:               scope.pairing.ID,
			SeasonID:                scope.season.ID,
			Side:                    side,
			ReplacedUserID:          replacedID,
			SubUserID:               sub.ID,
			ReplacedRatingAtRequest: replacedDisplayed,
			SubRatingAtRequest:      subDisplayed,
			Status:                  substitution.StatusPending,
			RequestedBy:             c.UserID,
			RequestedAt:             now,
		}
		if err := r.Substitutions.Create(ctx, out); err != nil {
			return classify(fmt.Errorf("create substitution request: %w", err))
		}
		return nil
	})
	if err != nil {
		s.rejected(ctx, "substitution_request", pairingID, c, err)
		return substitution.Request{}, err
	}

	s.metrics.IncSubstitution(string(out.Status))
	s.logger.InfoContext(ctx, "substitution requested",
		"request_id", out.ID,
		"pairing_id", out.PairingID,
		"side", out.Side,
		"replaced_user_id", out.ReplacedUserID,
		"sub_user_id", out.SubUserID,
	)
	return out, nil
}

// Approve swaps the substitute into the pairing and rejects the sibling requests.
// The substitute's rating snapshot comes from the request, not a fresh lookup.
func (s *SubstitutionService) Approve(ctx context.Context, c user.Capability, pairingID, requestID string) (substitution.Decision, error) {
	ctx, finish := traceOp(ctx, "usecase.SubstitutionService.Approve", attribute.String("substitution.id", requestID))
	var out substitution.Decision
	var err error
	defer func() { finish(err) }()

	err = s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		target, err := loadRequest(ctx, r, pairingID, requestID)
		if err != nil {
			return err
		}
		scope, err := loadPairingScope(ctx, r, target.PairingID, true)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, scope.season.LeagueID); err != nil {
			return err
		}
		if scope.pairing.IsFinal() {
			return classify(pairing.ErrFinal)
		}
		if err := checkWeekOpen(scope.week, true); err != nil {
			return err
		}

		siblings, err := r.Substitutions.ListByPairing(ctx, scope.pairing.ID)
		if err != nil {
			return fmt.Errorf("list substitution requests: %w", err)
		}
		now := s.now().UTC()
		out, err = substitution.Approve(scope.pairing, target, siblings, c.UserID, now)
		if err != nil {
			return classify(err)
		}
		current, err := ensureRatings(ctx, r, scope.season.LeagueID, []string{target.SubUserID}, now, false)
		if err != nil {
			return err
		}
		out.RatingDrift = rating.Displayed(current[target.SubUserID], scope.season.DisplayBounds()) - target.SubRatingAtRequest

		out.Pairing.UpdatedAt = now
		if err := r.Pairings.Update(ctx, out.Pairing); err != nil {
			return fmt.Errorf("update pairing: %w", err)
		}
		if err := r.Substitutions.Update(ctx, out.Approved); err != nil {
			return fmt.Errorf("update substitution request: %w", err)
		}
		for _, rejected := range out.AutoRejected {
			if err := r.Substitutions.Update(ctx, rejected); err != nil {
				return fmt.Errorf("auto-reject substitution request: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.rejected(ctx, "substitution_approve", pairingID, c, err)
		return substitution.Decision{}, err
	}

	s.metrics.IncSubstitution(string(substitution.StatusApproved))
	for range out.AutoRejected {
		s.metrics.IncSubstitution(string(substitution.StatusRejected))
	}
	if out.RatingDrift != 0 {
		s.logger.WarnContext(ctx, "substitute rating drifted since request",
			"request_id", out.Approved.ID,
			"sub_user_id", out.Approved.SubUserID,
			"rating_at_request", out.Approved.SubRatingAtRequest,
			"rating_drift", out.RatingDrift,
		)
	}
	s.logger.InfoContext(ctx, "substitution approved",
		"request_id", out.Approved.ID,
		"pairing_id", out.Pairing.ID,
		"auto_rejected", len(out.AutoRejected),
	)
	return out, nil
}

func (s *SubstitutionService) Reject(ctx context.Context, c user.Capability, pairingID, requestID, note string) (substitution.Request, error) {
	var out substitution.Request
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		target, err := loadRequest(ctx, r, pairingID, requestID)
		if err != nil {
			return err
		}
		season, err := loadSeason(ctx, r, target.SeasonID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}

		out, err = substitution.Reject(target, c.UserID, strings.TrimSpace(note), s.now())
		if err != nil {
			return classify(err)
		}
		if err := r.Substitutions.Update(ctx, out); err != nil {
			return fmt.Errorf("update substitution request: %w", err)
		}
		return nil
	})
	if err != nil {
		s.rejected(ctx, "substitution_reject", pairingID, c, err)
		return substitution.Request{}, err
	}

	s.metrics.IncSubstitution(string(out.Status))
	return out, nil
}

// ListBySeason returns a season's requests newest first. Admin only.
func (s *SubstitutionService) ListBySeason(ctx context.Context, c user.Capability, seasonID string) ([]substitution.Request, error) {
	var out []substitution.Request
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}
		out, err = r.Substitutions.ListBySeason(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("list substitution requests: %w", err)
		}
		return nil
	})
	return out, err
}

func (s *SubstitutionService) rejected(ctx context.Context, op, pairingID string, c user.Capability, err error) {
	s.metrics.IncRejected(op, errorKind(err))
	s.logger.WarnContext(ctx, "substitution action rejected",
		"operation", op,
		"pairing_id", pairingID,
		"user_id", c.UserID,
		"error", err,
	)
}

// loadRequest fetches a request and checks it belongs to pairingID when one is given.
func loadRequest(ctx context.Context, r store.Repositories, pairingID, requestID string) (substitution.Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return substitution.Request{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	req, exists, err := r.Substitutions.GetByID(ctx, requestID)
	if err != nil {
		return substitution.Request{}, fmt.Errorf("get substitution request: %w", err)
	}
	if !exists {
		return substitution.Request{}, fmt.Errorf("%w: substitution=%s", ErrNotFound, requestID)
	}
	if pairingID = strings.TrimSpace(pairingID); pairingID != "" && req.PairingID != pairingID {
		return substitution.Request{}, fmt.Errorf("%w: substitution=%s pairing=%s", ErrNotFound, requestID, pairingID)
	}
	return req, nil
}
