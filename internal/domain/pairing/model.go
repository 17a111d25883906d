package pairing

import (
	"fmt"
	"time"
)

type State string

const (
	StatePendingSchedule State = "PENDING_SCHEDULE"
	StateScheduled       State = "SCHEDULED"
	StateReported        State = "REPORTED"
	StateDisputed        State = "DISPUTED"
	StateFinal           State = "FINAL"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Score is a best-of-3 tally of games won by each side.
type Score struct {
	A int
	B int
}

// Valid reports whether the tally is one of 2-0, 2-1, 1-2, 0-2.
func (s Score) Valid() bool {
	hi, lo := s.A, s.B
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi == 2 && (lo == 0 || lo == 1)
}

// Winner returns the side with more games won. Valid scores always have one.
func (s Score) Winner() Side {
	if s.A > s.B {
		return SideA
	}
	return SideB
}

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.A, s.B)
}

// ScoreForWinner is the canonical 2-0 result for a winner shorthand.
func ScoreForWinner(side Side) Score {
	if side == SideB {
		return Score{A: 0, B: 2}
	}
	return Score{A: 2, B: 0}
}

// Pairing is one seed-indexed head-to-head inside a matchup.
type Pairing struct {
	ID                  string
	MatchupID           string
	SeedIndex           int
	PlayerAID           string
	PlayerBID           string
	RatingAAtCreate     int
	RatingBAtCreate     int
	State               State
	ScheduledFor        *time.Time
	ScheduleProposedBy  string
	ScheduleConfirmedA  bool
	ScheduleConfirmedB  bool
	Score               *Score
	ReportedBy          string
	ReportedAt          *time.Time
	ConfirmedByOpponent bool
	DisputedBy          string
	DisputeNote         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PlayerOn returns the user playing the given side.
func (p Pairing) PlayerOn(side Side) string {
	if side == SideB {
		return p.PlayerBID
	}
	return p.PlayerAID
}

func (p Pairing) IsFinal() bool {
	return p.State == StateFinal
}

// Participant reports whether userID plays either side.
func (p Pairing) Participant(userID string) bool {
	return userID != "" && (userID == p.PlayerAID || userID == p.PlayerBID)
}
