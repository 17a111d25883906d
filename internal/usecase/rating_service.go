package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/metrics"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

type RatingService struct {
	store   store.Store
	ids     id.Generator
	logger  *logging.Logger
	metrics metrics.Metrics
	now     func() time.Time
}

func NewRatingService(st store.Store, ids id.Generator, logger *logging.Logger, m metrics.Metrics) *RatingService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &RatingService{store: st, ids: ids, logger: logger, metrics: m, now: time.Now}
}

// SetRating overwrites a hidden rating and records an ADMIN_SET event.
func (s *RatingService) SetRating(ctx context.Context, c user.Capability, leagueID, userID string, hidden int, reason string) (rating.Event, error) {
	leagueID, userID = strings.TrimSpace(leagueID), strings.TrimSpace(userID)
	if err := requireAdmin(c, leagueID); err != nil {
		return rating.Event{}, err
	}

	var out rating.Event
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		u, err := resolveUser(ctx, r, userID, "")
		if err != nil {
			return err
		}

		now := s.now().UTC()
		current, err := ensureRatings(ctx, r, leagueID, []string{u.ID}, now, true)
		if err != nil {
			return err
		}
		before := current[u.ID]

		if err := r.Ratings.Upsert(ctx, rating.Rating{LeagueID: leagueID, UserID: u.ID, Hidden: hidden, UpdatedAt: now}); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		if reason = strings.TrimSpace(reason); reason == "" {
			reason = "Admin set"
		}
		out = rating.Event{
			LeagueID:  leagueID,
			UserID:    u.ID,
			Kind:      rating.EventAdminSet,
			Before:    before,
			After:     hidden,
			Delta:     hidden - before,
			Reason:    reason,
			CreatedAt: now,
		}
		if out.ID, err = s.ids.NewID(); err != nil {
			return fmt.Errorf("generate rating event id: %w", err)
		}
		if err := r.Ratings.AppendEvents(ctx, []rating.Event{out}); err != nil {
			return fmt.Errorf("append rating event: %w", err)
		}
		return nil
	})
	if err != nil {
		return rating.Event{}, err
	}

	s.metrics.AddLedgerRows("rating", 1)
	s.logger.InfoContext(ctx, "rating set", "league_id", leagueID, "user_id", out.UserID, "before", out.Before, "after", out.After)
	return out, nil
}
