package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crdberrors "github.com/cockroachdb/errors"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// SlotInput assigns a user, by id or email, to a seed.
type SlotInput struct {
	SeedIndex int
	UserID    string
	Email     string
}

type RosterService struct {
	store  store.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewRosterService(st store.Store, logger *logging.Logger) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{store: st, logger: logger, now: time.Now}
}

// Submit replaces a team's roster and clears any earlier approval.
func (s *RosterService) Submit(ctx context.Context, c user.Capability, teamID string, in []SlotInput) ([]team.RosterSlot, error) {
	var out []team.RosterSlot
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		t, season, err := loadTeam(ctx, r, teamID)
		if err != nil {
			return err
		}
		if !c.AdminOf(season.LeagueID) && !c.Captains(t.ID) {
			return fmt.Errorf("%w: captain of team %s or league admin required", ErrForbidden, t.ID)
		}

		now := s.now().UTC()
		slots := make([]team.RosterSlot, 0, len(in))
		userIDs := make([]string, 0, len(in))
		for _, item := range in {
			u, err := resolveUser(ctx, r, item.UserID, item.Email)
			if err != nil {
				return err
			}
			slots = append(slots, team.RosterSlot{TeamID: t.ID, SeedIndex: item.SeedIndex, UserID: u.ID, Active: true})
			userIDs = append(userIDs, u.ID)
		}
		if err := team.ValidateRoster(slots, season.RosterSize); err != nil {
			return classify(err)
		}

		hidden, err := ensureRatings(ctx, r, season.LeagueID, userIDs, now, true)
		if err != nil {
			return err
		}
		bounds := season.DisplayBounds()
		for i := range slots {
			slots[i].RatingAtSubmit = rating.Displayed(hidden[slots[i].UserID], bounds)
		}
		if err := checkRosterCap(slots, season); err != nil {
			return err
		}

		if err := r.Teams.ReplaceRoster(ctx, t.ID, slots, now); err != nil {
			return fmt.Errorf("replace roster: %w", err)
		}
		out = slots
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "roster submit rejected", "team_id", teamID, "user_id", c.UserID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "roster submitted", "team_id", teamID, "slots", len(out))
	return out, nil
}

// Approve locks the submitted ratings so the team becomes schedulable.
func (s *RosterService) Approve(ctx context.Context, c user.Capability, teamID string) ([]team.RosterSlot, error) {
	var out []team.RosterSlot
	err := s.store.Update(ctx, func(ctx context.Context, r store.Repositories) error {
		t, season, err := loadTeam(ctx, r, teamID)
		if err != nil {
			return err
		}
		if err := requireAdmin(c, season.LeagueID); err != nil {
			return err
		}
		if t.RosterSubmittedAt == nil {
			return fmt.Errorf("%w: team %s has not submitted a roster", ErrConflict, t.ID)
		}

		slots, err := r.Teams.ListSlots(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list roster slots: %w", err)
		}
		if err := team.ValidateRoster(slots, season.RosterSize); err != nil {
			return classify(err)
		}
		if err := checkRosterCap(slots, season); err != nil {
			return err
		}

		if err := r.Teams.LockRoster(ctx, t.ID, s.now().UTC()); err != nil {
			return fmt.Errorf("lock roster: %w", err)
		}
		if out, err = r.Teams.ListSlots(ctx, t.ID); err != nil {
			return fmt.Errorf("list roster slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "roster approved", "team_id", teamID, "approved_by", c.UserID)
	return out, nil
}

func checkRosterCap(slots []team.RosterSlot, season league.Season) error {
	if total := team.SubmittedTotal(slots); total > season.TeamRatingCap {
		return crdberrors.WithHintf(
			fmt.Errorf("%w: roster rating %d exceeds team cap %d", ErrRuleViolation, total, season.TeamRatingCap),
			"lower the combined displayed rating by %d", total-season.TeamRatingCap,
		)
	}
	return nil
}

func loadTeam(ctx context.Context, r store.Repositories, teamID string) (team.Team, league.Season, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, league.Season{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, exists, err := r.Teams.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, league.Season{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, league.Season{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	season, err := loadSeason(ctx, r, t.SeasonID)
	if err != nil {
		return team.Team{}, league.Season{}, err
	}
	return t, season, nil
}
