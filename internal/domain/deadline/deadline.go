package deadline

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is used when a season has no timezone configured.
const DefaultTimezone = "America/New_York"

const searchDays = 14

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidWeekday  = errors.New("invalid weekday")
)

// Days holds the target weekday (0=Sunday..6=Saturday) for each weekly cutoff.
type Days struct {
	Substitution time.Weekday
	Schedule     time.Weekday
	Results      time.Weekday
}

// Deadlines are the three per-week cutoffs. Instants are UTC and the
// *Local strings carry the season-local RFC3339 form for display.
type Deadlines struct {
	Timezone          string
	Substitution      time.Time
	Schedule          time.Time
	Results           time.Time
	SubstitutionLocal string
	ScheduleLocal     string
	ResultsLocal      string
}

// Compute returns the next 23:59:59 local occurrence of every configured
// weekday at or after opensAt.
func Compute(opensAt time.Time, timezone string, days Days) (Deadlines, error) {
	zone := strings.TrimSpace(timezone)
	if zone == "" {
		zone = DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Deadlines{}, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, zone, err)
	}
	for _, d := range []time.Weekday{days.Substitution, days.Schedule, days.Results} {
		if d < time.Sunday || d > time.Saturday {
			return Deadlines{}, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
	}

	sub, _ := nextOccurrence(opensAt, loc, days.Substitution)
	sched, _ := nextOccurrence(opensAt, loc, days.Schedule)
	results, _ := nextOccurrence(opensAt, loc, days.Results)

	return Deadlines{
		Timezone:          zone,
		Substitution:      sub.UTC(),
		Schedule:          sched.UTC(),
		Results:           results.UTC(),
		SubstitutionLocal: sub.Format(time.RFC3339),
		ScheduleLocal:     sched.Format(time.RFC3339),
		ResultsLocal:      results.Format(time.RFC3339),
	}, nil
}

// IsPast reports whether at is strictly before now.
func IsPast(now, at time.Time) bool {
	return now.After(at)
}

// nextOccurrence walks forward day by day from the local date of from.
// found is false only when the fallback of from+7 days was used.
func nextOccurrence(from time.Time, loc *time.Location, target time.Weekday) (at time.Time, found bool) {
	local := from.In(loc)
	y, m, d := local.Date()
	for i := 0; i < searchDays; i++ {
		candidate := endOfDay(y, m, d+i, loc)
		if candidate.Weekday() == target && !candidate.Before(local) {
			return candidate, true
		}
	}

	fallback := local.AddDate(0, 0, 7)
	fy, fm, fd := fallback.Date()
	return endOfDay(fy, fm, fd, loc), false
}

func endOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}
