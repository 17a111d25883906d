package team

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRosterSize     = errors.New("roster must fill every seed")
	ErrSeedOutOfRange = errors.New("seed index out of range")
	ErrDuplicateSeed  = errors.New("duplicate seed index")
	ErrDuplicateUser  = errors.New("user assigned to more than one seed")
)

// Team is one club competing in a season.
type Team struct {
	ID                string
	SeasonID          string
	Name              string
	CaptainUserID     string
	RosterSubmittedAt *time.Time
	RosterApprovedAt  *time.Time
}

// RosterSlot assigns a user to a seed. RatingAtLock stays nil until approval.
type RosterSlot struct {
	TeamID         string
	SeedIndex      int
	UserID         string
	RatingAtSubmit int
	RatingAtLock   *int
	Active         bool
}

// ValidateRoster checks that slots fill seeds 1..size exactly once with distinct users.
func ValidateRoster(slots []RosterSlot, size int) error {
	if len(slots) != size {
		return fmt.Errorf("%w: expected %d slots, got %d", ErrRosterSize, size, len(slots))
	}

	seeds := make(map[int]struct{}, len(slots))
	users := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		if s.SeedIndex < 1 || s.SeedIndex > size {
			return fmt.Errorf("%w: %d not in 1..%d", ErrSeedOutOfRange, s.SeedIndex, size)
		}
		if _, ok := seeds[s.SeedIndex]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateSeed, s.SeedIndex)
		}
		seeds[s.SeedIndex] = struct{}{}
		if _, ok := users[s.UserID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, s.UserID)
		}
		users[s.UserID] = struct{}{}
	}

	return nil
}

// SubmittedTotal sums the submit-time ratings of the slots.
func SubmittedTotal(slots []RosterSlot) int {
	total := 0
	for _, s := range slots {
		total += s.RatingAtSubmit
	}
	return total
}

// Schedulable reports whether a team has an approved roster of exactly size locked slots.
func Schedulable(t Team, slots []RosterSlot, size int) bool {
	if t.RosterApprovedAt == nil {
		return false
	}
	active := 0
	for _, s := range slots {
		if !s.Active {
			continue
		}
		if s.RatingAtLock == nil {
			return false
		}
		active++
	}
	return active == size
}
