package standing

import (
	"fmt"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

// MatchupResult is a matchup with all of its final pairings.
type MatchupResult struct {
	Matchup  week.Matchup
	Pairings []pairing.Pairing
}

// WeekInput is the snapshot a week finalization computes from.
// Ratings holds every participant's hidden rating before any update.
type WeekInput struct {
	SeasonID  string
	WeekID    string
	WeekIndex int
	K         int
	Matchups  []MatchupResult
	Ratings   map[string]int
}

// RatingChange is the accumulated rating movement of one user for the week.
type RatingChange struct {
	UserID string
	Before int
	After  int
	Delta  int
}

// WeekOutcome is everything a finalization writes.
type WeekOutcome struct {
	Points  []PointsEvent
	Ratings []RatingChange
}

// ComputeWeek derives points and rating changes without touching storage.
// Every pairing must carry a valid score.
func ComputeWeek(in WeekInput) (WeekOutcome, error) {
	var out WeekOutcome

	deltas := make(map[string]int)
	order := make([]string, 0)
	accumulate := func(userID string, d int) {
		if _, seen := deltas[userID]; !seen {
			order = append(order, userID)
		}
		deltas[userID] += d
	}

	for _, mr := range in.Matchups {
		m := mr.Matchup
		sideA, sideB := 0, 0

		for _, p := range mr.Pairings {
			if p.Score == nil || !p.Score.Valid() {
				return WeekOutcome{}, fmt.Errorf("pairing %s has no valid final score", p.ID)
			}
			s := *p.Score

			out.Points = append(out.Points,
				pairingEvent(in, m, p, m.TeamAID, p.PlayerAID, KindGameWin, s.A),
				pairingEvent(in, m, p, m.TeamBID, p.PlayerBID, KindGameWin, s.B),
			)
			sideA += s.A
			sideB += s.B

			if s.Winner() == pairing.SideA {
				out.Points = append(out.Points, pairingEvent(in, m, p, m.TeamAID, p.PlayerAID, KindMatchWin, MatchWinPoints))
				sideA += MatchWinPoints
			} else {
				out.Points = append(out.Points, pairingEvent(in, m, p, m.TeamBID, p.PlayerBID, KindMatchWin, MatchWinPoints))
				sideB += MatchWinPoints
			}

			ratingA, okA := in.Ratings[p.PlayerAID]
			ratingB, okB := in.Ratings[p.PlayerBID]
			if !okA || !okB {
				return WeekOutcome{}, fmt.Errorf("pairing %s: missing rating snapshot", p.ID)
			}
			dA := rating.Delta(ratingA, ratingB, s.A, s.B, in.K)
			accumulate(p.PlayerAID, dA)
			accumulate(p.PlayerBID, -dA)
		}

		bonusA, bonusB := WeekBonusLoss, WeekBonusLoss
		switch {
		case sideA > sideB:
			bonusA = WeekBonusWin
		case sideB > sideA:
			bonusB = WeekBonusWin
		default:
			bonusA, bonusB = WeekBonusTie, WeekBonusTie
		}
		out.Points = append(out.Points,
			bonusEvent(in, m, m.TeamAID, bonusA),
			bonusEvent(in, m, m.TeamBID, bonusB),
		)
	}

	for _, userID := range order {
		before := in.Ratings[userID]
		d := deltas[userID]
		out.Ratings = append(out.Ratings, RatingChange{
			UserID: userID,
			Before: before,
			After:  before + d,
			Delta:  d,
		})
	}

	return out, nil
}

// Reason is the rating ledger reason recorded for week finalization.
func Reason(weekIndex int) string {
	return fmt.Sprintf("Week %d finalize", weekIndex)
}

func pairingReason(weekIndex, seedIndex int, kind PointsKind) string {
	what := "game wins"
	if kind == KindMatchWin {
		what = "match win"
	}
	return fmt.Sprintf("Week %d pairing %d %s", weekIndex, seedIndex, what)
}

func bonusReason(weekIndex int, matchupID string) string {
	return fmt.Sprintf("Week %d bonus (matchup %s)", weekIndex, matchupID)
}

func pairingEvent(in WeekInput, m week.Matchup, p pairing.Pairing, teamID, userID string, kind PointsKind, points int) PointsEvent {
	return PointsEvent{
		SeasonID:  in.SeasonID,
		WeekID:    in.WeekID,
		MatchupID: m.ID,
		PairingID: p.ID,
		TeamID:    teamID,
		UserID:    userID,
		Kind:      kind,
		Points:    points,
		Reason:    pairingReason(in.WeekIndex, p.SeedIndex, kind),
	}
}

func bonusEvent(in WeekInput, m week.Matchup, teamID string, points int) PointsEvent {
	return PointsEvent{
		SeasonID:  in.SeasonID,
		WeekID:    in.WeekID,
		MatchupID: m.ID,
		TeamID:    teamID,
		Kind:      KindTeamWeekBonus,
		Points:    points,
		Reason:    bonusReason(in.WeekIndex, m.ID),
	}
}
