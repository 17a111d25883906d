package user

import (
	"slices"
	"strings"
)

// User is a league participant resolvable by ID or email.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Email  string
}

// Capability is the caller's authority over one league, resolved once per
// request and passed into every core operation.
type Capability struct {
	UserID        string
	LeagueID      string
	IsLeagueAdmin bool
	CaptainOf     []string
}

// AdminOf reports whether the capability grants admin rights over leagueID.
func (c Capability) AdminOf(leagueID string) bool {
	return c.IsLeagueAdmin && c.LeagueID != "" && c.LeagueID == leagueID
}

// Captains reports whether the caller captains teamID.
func (c Capability) Captains(teamID string) bool {
	return teamID != "" && slices.Contains(c.CaptainOf, teamID)
}

// NormalizeEmail lowercases and trims an email for directory lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
