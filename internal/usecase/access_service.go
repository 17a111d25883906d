package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
)

// AccessService turns an authenticated principal into the league-scoped
// capability that every league-cycle operation receives.
type AccessService struct {
	store       store.Store
	adminEmails map[string]struct{}
}

func NewAccessService(st store.Store, adminEmails []string) *AccessService {
	emails := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = user.NormalizeEmail(e); e != "" {
			emails[e] = struct{}{}
		}
	}
	return &AccessService{store: st, adminEmails: emails}
}

func (s *AccessService) ForPairing(ctx context.Context, p user.Principal, pairingID string) (user.Capability, error) {
	ctx, finish := traceOp(ctx, "usecase.AccessService.ForPairing", attribute.String("pairing.id", pairingID))
	var c user.Capability
	var err error
	defer func() { finish(err) }()

	err = s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		scope, err := loadPairingScope(ctx, r, pairingID, false)
		if err != nil {
			return err
		}
		c, err = s.resolve(ctx, r, p, scope.season)
		return err
	})
	return c, err
}

func (s *AccessService) ForWeek(ctx context.Context, p user.Principal, weekID string) (user.Capability, error) {
	var c user.Capability
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		weekID = strings.TrimSpace(weekID)
		w, exists, err := r.Weeks.GetByID(ctx, weekID)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: week=%s", ErrNotFound, weekID)
		}
		season, err := loadSeason(ctx, r, w.SeasonID)
		if err != nil {
			return err
		}
		c, err = s.resolve(ctx, r, p, season)
		return err
	})
	return c, err
}

func (s *AccessService) ForSeason(ctx context.Context, p user.Principal, seasonID string) (user.Capability, error) {
	var c user.Capability
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		season, err := loadSeason(ctx, r, seasonID)
		if err != nil {
			return err
		}
		c, err = s.resolve(ctx, r, p, season)
		return err
	})
	return c, err
}

func (s *AccessService) ForTeam(ctx context.Context, p user.Principal, teamID string) (user.Capability, error) {
	var c user.Capability
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		teamID = strings.TrimSpace(teamID)
		t, exists, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return fmt.Errorf("get team: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}
		season, err := loadSeason(ctx, r, t.SeasonID)
		if err != nil {
			return err
		}
		c, err = s.resolve(ctx, r, p, season)
		return err
	})
	return c, err
}

// ForLeague resolves admin rights only; captaincy is season-scoped.
func (s *AccessService) ForLeague(ctx context.Context, p user.Principal, leagueID string) (user.Capability, error) {
	var c user.Capability
	err := s.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		leagueID = strings.TrimSpace(leagueID)
		_, exists, err := r.Leagues.GetByID(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
		}

		userID, err := s.userID(ctx, r, p)
		if err != nil {
			return err
		}
		admin, err := s.isAdmin(ctx, r, p, userID, leagueID)
		if err != nil {
			return err
		}
		c = user.Capability{UserID: userID, LeagueID: leagueID, IsLeagueAdmin: admin}
		return nil
	})
	return c, err
}

func (s *AccessService) resolve(ctx context.Context, r store.Repositories, p user.Principal, season league.Season) (user.Capability, error) {
	userID, err := s.userID(ctx, r, p)
	if err != nil {
		return user.Capability{}, err
	}
	admin, err := s.isAdmin(ctx, r, p, userID, season.LeagueID)
	if err != nil {
		return user.Capability{}, err
	}

	c := user.Capability{UserID: userID, LeagueID: season.LeagueID, IsLeagueAdmin: admin}
	if userID == "" {
		return c, nil
	}

	teams, err := r.Teams.ListBySeason(ctx, season.ID)
	if err != nil {
		return user.Capability{}, fmt.Errorf("list teams: %w", err)
	}
	for _, t := range teams {
		if t.CaptainUserID == userID {
			c.CaptainOf = append(c.CaptainOf, t.ID)
		}
	}
	return c, nil
}

// userID maps the principal onto the league directory, preferring the
// directory entry that matches the principal's email.
func (s *AccessService) userID(ctx context.Context, r store.Repositories, p user.Principal) (string, error) {
	if email := user.NormalizeEmail(p.Email); email != "" {
		u, exists, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("get user by email: %w", err)
		}
		if exists {
			return u.ID, nil
		}
	}
	return strings.TrimSpace(p.UserID), nil
}

func (s *AccessService) isAdmin(ctx context.Context, r store.Repositories, p user.Principal, userID, leagueID string) (bool, error) {
	if _, ok := s.adminEmails[user.NormalizeEmail(p.Email)]; ok {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}

	m, exists, err := r.Leagues.GetMember(ctx, leagueID, userID)
	if err != nil {
		return false, fmt.Errorf("get league member: %w", err)
	}
	return exists && m.Role == league.RoleAdmin, nil
}
