package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/platform/cache"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

const standingsCachePrefix = "standings:"

// Standings are a season's team and player tables.
type Standings struct {
	SeasonID    string
	Teams       []standing.TeamRow
	Players     []standing.PlayerRow
	GeneratedAt time.Time
}

type StandingsService struct {
	store  store.Store
	cache  *cache.Store[Standings]
	logger *logging.Logger
	now    func() time.Time
}

// NewStandingsService caches tables for ttl. A nil cache store disables caching.
func NewStandingsService(st store.Store, c *cache.Store[Standings], logger *logging.Logger) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{store: st, cache: c, logger: logger, now: time.Now}
}

func (s *StandingsService) Get(ctx context.Context, seasonID string) (Standings, error) {
	ctx, finish := traceOp(ctx, "usecase.StandingsService.Get")
	var out Standings
	var err error
	defer func() { finish(err) }()

	if s.cache == nil {
		out, err = s.load(ctx, seasonID)
		return out, err
	}
	out, err = s.cache.GetOrLoad(ctx, standingsCachePrefix+seasonID, func(ctx context.Context) (Standings, error) {
		return s.load(ctx, seasonID)
	})
	return out, err
}

// Invalidate drops the cached tables of a season.
func (s *StandingsService) Invalidate(ctx context.Context, seasonID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, standingsCachePrefix+seasonID)
}

func (s *StandingsService) load(ctx context.Context, seasonID string) (Standings, error) {
	var out Standings
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}

		var teams []team.Team
		var events []standing.PointsEvent
		p := pool.New().WithErrors().WithContext(ctx)
		p.Go(func(ctx context.Context) error {
			rows, err := r.Teams.ListBySeason(ctx, season.ID)
			if err != nil {
				return fmt.Errorf("list teams: %w", err)
			}
			teams = rows
			return nil
		})
		p.Go(func(ctx context.Context) error {
			rows, err := r.Points.ListBySeason(ctx, season.ID)
			if err != nil {
				return fmt.Errorf("list points events: %w", err)
			}
			events = rows
			return nil
		})
		if err := p.Wait(); err != nil {
			return err
		}

		teamPoints, playerPoints := standing.Tally(events)

		userIDs := make([]string, 0, len(teams)+len(playerPoints))
		for _, t := range teams {
			if t.CaptainUserID != "" {
				userIDs = append(userIDs, t.CaptainUserID)
			}
		}
		for userID := range playerPoints {
			userIDs = append(userIDs, userID)
		}
		users, err := r.Users.ListByIDs(ctx, userIDs)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		emails := make(map[string]string, len(users))
		for _, u := range users {
			emails[u.ID] = u.Email
		}

		out = Standings{SeasonID: season.ID, GeneratedAt: s.now().UTC()}
		for _, t := range teams {
			out.Teams = append(out.Teams, standing.TeamRow{
				TeamID:       t.ID,
				Name:         t.Name,
				CaptainEmail: emails[t.CaptainUserID],
				Points:       teamPoints[t.ID],
			})
		}
		for userID, points := range playerPoints {
			out.Players = append(out.Players, standing.PlayerRow{UserID: userID, Email: emails[userID], Points: points})
		}
		standing.SortTeams(out.Teams)
		standing.SortPlayers(out.Players)
		return nil
	})
	return out, err
}

var _ StandingsInvalidator = (*StandingsService)(nil)
