package week

import "time"

type State string

const (
	StateDraft  State = "DRAFT"
	StateOpen   State = "OPEN"
	StateLocked State = "LOCKED"
	StateFinal  State = "FINAL"
)

// Week is one cycle of a season. (SeasonID, Index) is unique.
type Week struct {
	ID        string
	SeasonID  string
	Index     int
	State     State
	OpensAt   *time.Time
	LocksAt   *time.Time
	CreatedAt time.Time
}

func (w Week) IsOpen() bool  { return w.State == StateOpen }
func (w Week) IsFinal() bool { return w.State == StateFinal }

type MatchupState string

const (
	MatchupDraft MatchupState = "DRAFT"
	MatchupOpen  MatchupState = "OPEN"
	MatchupFinal MatchupState = "FINAL"
)

// Matchup is one team-vs-team meeting inside a week.
type Matchup struct {
	ID      string
	WeekID  string
	TeamAID string
	TeamBID string
	State   MatchupState
}

// Side returns "A" or "B" for a team in the matchup, or "" when it does not play.
func (m Matchup) Side(teamID string) string {
	switch teamID {
	case m.TeamAID:
		return "A"
	case m.TeamBID:
		return "B"
	default:
		return ""
	}
}
