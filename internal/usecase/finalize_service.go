package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crdberrors "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/metrics"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// FinalizeResult summarizes what a week finalization wrote.
type FinalizeResult struct {
	Week          week.Week
	PointsEvents  []standing.PointsEvent
	RatingChanges []standing.RatingChange
}

// StandingsInvalidator drops cached standings of a season.
type StandingsInvalidator interface {
	Invalidate(ctx context.Context, seasonID string)
}

type FinalizeService struct {
	store       store.Store
	ids         id.Generator
	invalidator StandingsInvalidator
	logger      *logging.Logger
	metrics     metrics.Metrics
	now         func() time.Time
}

func NewFinalizeService(
	st store.Store,
	ids id.Generator,
	invalidator StandingsInvalidator,
	logger *logging.Logger,
	m metrics.Metrics,
) *FinalizeService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &FinalizeService{
		store:       st,
		ids:         ids,
		invalidator: invalidator,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// weekSnapshot is everything finalization reads, taken before any write.
type weekSnapshot struct {
	season league.Season
	week   week.Week
	input  standing.WeekInput
}

// FinalizeWeek converts a week whose pairings are all FINAL into points and
// rating events, then marks the week FINAL. It is all-or-nothing.
func (s *FinalizeService) FinalizeWeek(ctx context.Context, c user.Capability, weekID string) (FinalizeResult, error) {
	ctx, finish := traceOp(ctx, "usecase.FinalizeService.FinalizeWeek", attribute.String("week.id", weekID))
	var out FinalizeResult
	var err error
	defer func() { finish(err) }()

	started := time.Now()
	err = s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		snap, err := s.snapshot(ctx, r, c, weekID)
		if err != nil {
			return err
		}

		outcome, err := standing.ComputeWeek(snap.input)
		if err != nil {
			return fmt.Errorf("compute week outcome: %w", err)
		}

		out, err = s.apply(ctx, r, snap, outcome)
		return err
	})
	if err != nil {
		s.metrics.IncRejected("finalize", errorKind(err))
		s.logger.WarnContext(ctx, "week finalization rejected", "week_id", weekID, "user_id", c.UserID, "error", err)
		return FinalizeResult{}, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, out.Week.SeasonID)
	}
	s.metrics.IncWeekFinalized()
	s.metrics.AddLedgerRows("points", len(out.PointsEvents))
	s.metrics.AddLedgerRows("rating", len(out.RatingChanges))
	s.metrics.ObserveFinalizeDuration(time.Since(started).Seconds())
	s.logger.InfoContext(ctx, "week finalized",
		"week_id", out.Week.ID,
		"season_id", out.Week.SeasonID,
		"week_index", out.Week.Index,
		"points_events", len(out.PointsEvents),
		"rating_changes", len(out.RatingChanges),
	)
	return out, nil
}

// snapshot locks the week, checks preconditions and reads every pairing and
// pre-finalization hidden rating once.
func (s *FinalizeService) snapshot(ctx context.Context, r store.Repositories, c user.Capability, weekID string) (weekSnapshot, error) {
	weekID = strings.TrimSpace(weekID)
	if weekID == "" {
		return weekSnapshot{}, fmt.Errorf("%w: week id is required", ErrInvalidInput)
	}

	w, exists, err := r.Weeks.GetForUpdate(ctx, weekID)
	if err != nil {
		return weekSnapshot{}, fmt.Errorf("lock week: %w", err)
	}
	if !exists {
		return weekSnapshot{}, fmt.Errorf("%w: week=%s", ErrNotFound, weekID)
	}
	season, err := loadSeason(ctx, r, w.SeasonID)
	if err != nil {
		return weekSnapshot{}, err
	}
	if err := requireAdmin(c, season.LeagueID); err != nil {
		return weekSnapshot{}, err
	}
	if w.IsFinal() {
		return weekSnapshot{}, crdberrors.WithHintf(
			fmt.Errorf("%w: week %d is already final", ErrConflict, w.Index),
			"week was locked at %s", formatLockTime(w.LocksAt),
		)
	}

	matchups, err := r.Weeks.ListMatchups(ctx, w.ID)
	if err != nil {
		return weekSnapshot{}, fmt.Errorf("list matchups: %w", err)
	}

	input := standing.WeekInput{
		SeasonID:  season.ID,
		WeekID:    w.ID,
		WeekIndex: w.Index,
		K:         season.KFactor,
		Matchups:  make([]standing.MatchupResult, 0, len(matchups)),
	}
	notFinal := &NotFinalError{WeekID: w.ID}
	userIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, m := range matchups {
		pairings, err := r.Pairings.ListByMatchup(ctx, m.ID)
		if err != nil {
			return weekSnapshot{}, fmt.Errorf("list pairings: %w", err)
		}
		for _, p := range pairings {
			if !p.IsFinal() {
				notFinal.Pairings = append(notFinal.Pairings, PendingPairing{
					PairingID: p.ID,
					MatchupID: m.ID,
					SeedIndex: p.SeedIndex,
					State:     p.State,
				})
			}
			for _, userID := range []string{p.PlayerAID, p.PlayerBID} {
				if _, ok := seen[userID]; !ok {
					seen[userID] = struct{}{}
					userIDs = append(userIDs, userID)
				}
			}
		}
		input.Matchups = append(input.Matchups, standing.MatchupResult{Matchup: m, Pairings: pairings})
	}
	if len(notFinal.Pairings) > 0 {
		return weekSnapshot{}, notFinal
	}

	// Pairing and rating reads hold row locks until commit, so concurrent
	// pairing actions and rating writes wait for this finalization.
	if input.Ratings, err = ensureRatings(ctx, r, season.LeagueID, userIDs, s.now().UTC(), true); err != nil {
		return weekSnapshot{}, err
	}

	return weekSnapshot{season: season, week: w, input: input}, nil
}

// apply writes the computed outcome. Nothing here reads ratings back.
func (s *FinalizeService) apply(ctx context.Context, r store.Repositories, snap weekSnapshot, outcome standing.WeekOutcome) (FinalizeResult, error) {
	now := s.now().UTC()

	points := make([]standing.PointsEvent, 0, len(outcome.Points))
	for _, e := range outcome.Points {
		var err error
		if e.ID, err = s.ids.NewID(); err != nil {
			return FinalizeResult{}, fmt.Errorf("generate points event id: %w", err)
		}
		e.CreatedAt = now
		points = append(points, e)
	}
	if err := r.Points.AppendPoints(ctx, points); err != nil {
		return FinalizeResult{}, fmt.Errorf("append points events: %w", err)
	}

	events := make([]rating.Event, 0, len(outcome.Ratings))
	for _, change := range outcome.Ratings {
		if err := r.Ratings.Upsert(ctx, rating.Rating{
			LeagueID:  snap.season.LeagueID,
			UserID:    change.UserID,
			Hidden:    change.After,
			UpdatedAt: now,
		}); err != nil {
			return FinalizeResult{}, fmt.Errorf("update rating: %w", err)
		}

		eventID, err := s.ids.NewID()
		if err != nil {
			return FinalizeResult{}, fmt.Errorf("generate rating event id: %w", err)
		}
		events = append(events, rating.Event{
			ID:        eventID,
			LeagueID:  snap.season.LeagueID,
			SeasonID:  snap.season.ID,
			WeekID:    snap.week.ID,
			UserID:    change.UserID,
			Kind:      rating.EventMatchResult,
			Before:    change.Before,
			After:     change.After,
			Delta:     change.Delta,
			Reason:    standing.Reason(snap.week.Index),
			CreatedAt: now,
		})
	}
	if err := r.Ratings.AppendEvents(ctx, events); err != nil {
		return FinalizeResult{}, fmt.Errorf("append rating events: %w", err)
	}

	if err := r.Weeks.SetMatchupsState(ctx, snap.week.ID, week.MatchupFinal); err != nil {
		return FinalizeResult{}, fmt.Errorf("finalize matchups: %w", err)
	}
	w := snap.week
	locksAt := now
	w.State = week.StateFinal
	w.LocksAt = &locksAt
	if err := r.Weeks.Update(ctx, w); err != nil {
		return FinalizeResult{}, fmt.Errorf("finalize week: %w", err)
	}

	return FinalizeResult{Week: w, PointsEvents: points, RatingChanges: outcome.Ratings}, nil
}

func formatLockTime(at *time.Time) string {
	if at == nil {
		return "an unknown time"
	}
	return at.UTC().Format(time.RFC3339)
}
