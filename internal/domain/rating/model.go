package rating

import "time"

// Rating is a user's hidden skill value inside one league.
type Rating struct {
	LeagueID  string
	UserID    string
	Hidden    int
	UpdatedAt time.Time
}

type EventKind string

const (
	EventMatchResult EventKind = "MATCH_RESULT"
	EventAdminSet    EventKind = "ADMIN_SET"
)

// Event is an append-only record of one rating mutation.
type Event struct {
	ID        string
	LeagueID  string
	SeasonID  string
	WeekID    string
	UserID    string
	Kind      EventKind
	Before    int
	After     int
	Delta     int
	Reason    string
	CreatedAt time.Time
}
