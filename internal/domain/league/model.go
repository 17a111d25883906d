package league

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
)

// League is the top-level competition that owns ratings and memberships.
type League struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCaptain Role = "CAPTAIN"
	RoleMember  Role = "MEMBER"
)

// Member links a user to a league with a role.
type Member struct {
	LeagueID string
	UserID   string
	Role     Role
}

const (
	DefaultRosterSize    = 4
	DefaultRegularWeeks  = 8
	DefaultTeamRatingCap = 1400
)

// Season carries the rule configuration every league-cycle operation needs.
type Season struct {
	ID                  string
	LeagueID            string
	Name                string
	RosterSize          int
	RegularWeeks        int
	Timezone            string
	SubDeadlineDay      time.Weekday
	ScheduleDeadlineDay time.Weekday
	ResultsDeadlineDay  time.Weekday
	RatingMin           int
	RatingMax           int
	KFactor             int
	TeamRatingCap       int
	CreatedAt           time.Time
}

// WithDefaults fills zero-valued rule fields.
func (s Season) WithDefaults() Season {
	if s.RosterSize <= 0 {
		s.RosterSize = DefaultRosterSize
	}
	if s.RegularWeeks <= 0 {
		s.RegularWeeks = DefaultRegularWeeks
	}
	if strings.TrimSpace(s.Timezone) == "" {
		s.Timezone = deadline.DefaultTimezone
	}
	if s.RatingMin == 0 && s.RatingMax == 0 {
		b := rating.DefaultBounds()
		s.RatingMin, s.RatingMax = b.Min, b.Max
	}
	if s.KFactor <= 0 {
		s.KFactor = rating.DefaultK
	}
	if s.TeamRatingCap <= 0 {
		s.TeamRatingCap = DefaultTeamRatingCap
	}
	return s
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("season league id is required")
	}
	if s.RatingMin > s.RatingMax {
		return fmt.Errorf("season rating min %d exceeds max %d", s.RatingMin, s.RatingMax)
	}
	for _, d := range []time.Weekday{s.SubDeadlineDay, s.ScheduleDeadlineDay, s.ResultsDeadlineDay} {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("season deadline weekday %d out of range", d)
		}
	}

	return nil
}

func (s Season) DisplayBounds() rating.Bounds {
	return rating.Bounds{Min: s.RatingMin, Max: s.RatingMax}
}

func (s Season) DeadlineDays() deadline.Days {
	return deadline.Days{
		Substitution: s.SubDeadlineDay,
		Schedule:     s.ScheduleDeadlineDay,
		Results:      s.ResultsDeadlineDay,
	}
}
