package standing

import (
	"cmp"
	"slices"
	"time"
)

type PointsKind string

const (
	KindGameWin       PointsKind = "GAME_WIN"
	KindMatchWin      PointsKind = "MATCH_WIN"
	KindTeamWeekBonus PointsKind = "TEAM_WEEK_BONUS"
)

const (
	MatchWinPoints = 1
	WeekBonusWin   = 3
	WeekBonusTie   = 1
	WeekBonusLoss  = 0
)

// PointsEvent is an append-only standings award. UserID is empty for team-level bonuses.
type PointsEvent struct {
	ID        string
	SeasonID  string
	WeekID    string
	MatchupID string
	PairingID string
	TeamID    string
	UserID    string
	Kind      PointsKind
	Points    int
	Reason    string
	CreatedAt time.Time
}

// TeamRow is one line of the team table.
type TeamRow struct {
	TeamID       string
	Name         string
	CaptainEmail string
	Points       int
}

// PlayerRow is one line of the player table.
type PlayerRow struct {
	UserID string
	Email  string
	Points int
}

// Tally sums points per team and per user.
func Tally(events []PointsEvent) (teamPoints, playerPoints map[string]int) {
	teamPoints = make(map[string]int)
	playerPoints = make(map[string]int)
	for _, e := range events {
		if e.TeamID != "" {
			teamPoints[e.TeamID] += e.Points
		}
		if e.UserID != "" {
			playerPoints[e.UserID] += e.Points
		}
	}
	return teamPoints, playerPoints
}

// SortTeams orders by points descending, then name.
func SortTeams(rows []TeamRow) {
	slices.SortStableFunc(rows, func(a, b TeamRow) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortPlayers orders by points descending, then email (or user id when unknown).
func SortPlayers(rows []PlayerRow) {
	label := func(r PlayerRow) string {
		if r.Email != "" {
			return r.Email
		}
		return r.UserID
	}
	slices.SortStableFunc(rows, func(a, b PlayerRow) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(label(a), label(b))
	})
}
