package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
)

const (
	DemoLeagueID = "playhub-demo"
	DemoSeasonID = "playhub-demo-2025-fall"
	DemoAdminID  = "u-admin"
)

var demoTeams = []struct {
	id   string
	name string
}{
	{id: "t-aces", name: "Aces"},
	{id: "t-backhands", name: "Backhands"},
	{id: "t-cross-court", name: "Cross Court"},
	{id: "t-dinkers", name: "Dinkers"},
}

// DemoSeed is a season with four approved teams ready for schedule generation.
func DemoSeed() Seed {
	createdAt := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	seed := Seed{
		Leagues: []league.League{{ID: DemoLeagueID, Name: "PlayHub Demo League", CreatedAt: createdAt}},
		Seasons: []league.Season{
			league.Season{
				ID:                  DemoSeasonID,
				LeagueID:            DemoLeagueID,
				Name:                "Fall 2025",
				Timezone:            "America/New_York",
				SubDeadlineDay:      time.Wednesday,
				ScheduleDeadlineDay: time.Thursday,
				ResultsDeadlineDay:  time.Sunday,
				CreatedAt:           createdAt,
			}.WithDefaults(),
		},
		Users:   []user.User{{ID: DemoAdminID, Email: "admin@playhub.test", DisplayName: "League Admin"}},
		Members: []league.Member{{LeagueID: DemoLeagueID, UserID: DemoAdminID, Role: league.RoleAdmin}},
	}

	for ti, t := range demoTeams {
		approvedAt := createdAt
		seed.Teams = append(seed.Teams, team.Team{
			ID:                t.id,
			SeasonID:          DemoSeasonID,
			Name:              t.name,
			CaptainUserID:     demoPlayerID(ti, 1),
			RosterSubmittedAt: &approvedAt,
			RosterApprovedAt:  &approvedAt,
		})

		for idx := 1; idx <= league.DefaultRosterSize; idx++ {
			userID := demoPlayerID(ti, idx)
			hidden := 340 - 30*idx + 5*ti
			locked := hidden

			seed.Users = append(seed.Users, user.User{
				ID:          userID,
				Email:       fmt.Sprintf("%s@playhub.test", userID),
				DisplayName: fmt.Sprintf("%s #%d", t.name, idx),
			})
			seed.Slots = append(seed.Slots, team.RosterSlot{
				TeamID:         t.id,
				SeedIndex:      idx,
				UserID:         userID,
				RatingAtSubmit: hidden,
				RatingAtLock:   &locked,
				Active:         true,
			})
			seed.Ratings = append(seed.Ratings, rating.Rating{
				LeagueID:  DemoLeagueID,
				UserID:    userID,
				Hidden:    hidden,
				UpdatedAt: createdAt,
			})

			role := league.RoleMember
			if idx == 1 {
				role = league.RoleCaptain
			}
			seed.Members = append(seed.Members, league.Member{LeagueID: DemoLeagueID, UserID: userID, Role: role})
		}
	}

	return seed
}

func demoPlayerID(teamIndex, seedIndex int) string {
	return fmt.Sprintf("u-%s-%d", demoTeams[teamIndex].id[2:], seedIndex)
}
