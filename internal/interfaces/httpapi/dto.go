package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

type scheduleRequest struct {
	ProposedForUTC string `json:"proposed_for_utc" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type reportRequest struct {
	GamesA *int `json:"games_a" validate:"required,min=0,max=2"`
	GamesB *int `json:"games_b" validate:"required,min=0,max=2"`
}

type disputeRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

type adminResolveRequest struct {
	GamesA *int   `json:"games_a" validate:"required_with=GamesB,omitempty,min=0,max=2"`
	GamesB *int   `json:"games_b" validate:"required_with=GamesA,omitempty,min=0,max=2"`
	Winner string `json:"winner" validate:"required_without=GamesA,omitempty,oneof=A B"`
}

type substitutionRequest struct {
	SubUserID string `json:"sub_user_id" validate:"required_without=SubEmail,omitempty,max=64"`
	SubEmail  string `json:"sub_email" validate:"required_without=SubUserID,omitempty,email"`
}

type rejectSubstitutionRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type generateScheduleRequest struct {
	Overwrite bool `json:"overwrite"`
}

type generateWeekRequest struct {
	Open *bool `json:"open"`
}

// open defaults to true when the body leaves it out.
func (r generateWeekRequest) open() bool {
	return r.Open == nil || *r.Open
}

type rosterSlotRequest struct {
	SeedIndex int    `json:"seed_index" validate:"required,min=1"`
	UserID    string `json:"user_id" validate:"required_without=Email,omitempty,max=64"`
	Email     string `json:"email" validate:"required_without=UserID,omitempty,email"`
}

type submitRosterRequest struct {
	Slots []rosterSlotRequest `json:"slots" validate:"required,min=1,dive"`
}

type setRatingRequest struct {
	Hidden *int   `json:"hidden" validate:"required,min=0,max=5000"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type scoreDTO struct {
	A int `json:"a"`
	B int `json:"b"`
}

type pairingDTO struct {
	ID                  string    `json:"id"`
	MatchupID           string    `json:"matchup_id"`
	SeedIndex           int       `json:"seed_index"`
	PlayerAID           string    `json:"player_a_id"`
	PlayerBID           string    `json:"player_b_id"`
	RatingAAtCreate     int       `json:"rating_a_at_create"`
	RatingBAtCreate     int       `json:"rating_b_at_create"`
	State               string    `json:"state"`
	ScheduledForUTC     string    `json:"scheduled_for_utc,omitempty"`
	ScheduleProposedBy  string    `json:"schedule_proposed_by,omitempty"`
	ScheduleConfirmedA  bool      `json:"schedule_confirmed_a"`
	ScheduleConfirmedB  bool      `json:"schedule_confirmed_b"`
	Score               *scoreDTO `json:"score,omitempty"`
	ReportedBy          string    `json:"reported_by,omitempty"`
	ReportedAtUTC       string    `json:"reported_at_utc,omitempty"`
	ConfirmedByOpponent bool      `json:"confirmed_by_opponent"`
	DisputedBy          string    `json:"disputed_by,omitempty"`
	DisputeNote         string    `json:"dispute_note,omitempty"`
	UpdatedAtUTC        string    `json:"updated_at_utc"`
}

type deadlinesDTO struct {
	Timezone          string `json:"timezone"`
	SubstitutionUTC   string `json:"substitution_utc"`
	ScheduleUTC       string `json:"schedule_utc"`
	ResultsUTC        string `json:"results_utc"`
	SubstitutionLocal string `json:"substitution_local"`
	ScheduleLocal     string `json:"schedule_local"`
	ResultsLocal      string `json:"results_local"`
}

type matchupDTO struct {
	ID      string `json:"id"`
	WeekID  string `json:"week_id"`
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id"`
	State   string `json:"state"`
}

type pairingViewDTO struct {
	Pairing   pairingDTO    `json:"pairing"`
	Matchup   matchupDTO    `json:"matchup"`
	WeekID    string        `json:"week_id"`
	WeekIndex int           `json:"week_index"`
	WeekState string        `json:"week_state"`
	Deadlines *deadlinesDTO `json:"deadlines,omitempty"`
}

type weekDTO struct {
	ID         string `json:"id"`
	SeasonID   string `json:"season_id"`
	Index      int    `json:"index"`
	State      string `json:"state"`
	OpensAtUTC string `json:"opens_at_utc,omitempty"`
	LocksAtUTC string `json:"locks_at_utc,omitempty"`
}

type weekPlanDTO struct {
	Week     weekDTO      `json:"week"`
	Matchups []matchupDTO `json:"matchups"`
}

type currentWeekDTO struct {
	Week      weekDTO      `json:"week"`
	Matchups  []matchupDTO `json:"matchups"`
	Deadlines deadlinesDTO `json:"deadlines"`
}

type substitutionDTO struct {
	ID                      string `json:"id"`
	PairingID               string `json:"pairing_id"`
	SeasonID                string `json:"season_id"`
	Side                    string `json:"side"`
	ReplacedUserID          string `json:"replaced_user_id"`
	SubUserID               string `json:"sub_user_id"`
	ReplacedRatingAtRequest int    `json:"replaced_rating_at_request"`
	SubRatingAtRequest      int    `json:"sub_rating_at_request"`
	Status                  string `json:"status"`
	RequestedBy             string `json:"requested_by"`
	RequestedAtUTC          string `json:"requested_at_utc"`
	DecidedBy               string `json:"decided_by,omitempty"`
	DecidedAtUTC            string `json:"decided_at_utc,omitempty"`
	Note                    string `json:"note,omitempty"`
}

type substitutionDecisionDTO struct {
	Approved     substitutionDTO   `json:"approved"`
	AutoRejected []substitutionDTO `json:"auto_rejected"`
	Pairing      pairingDTO        `json:"pairing"`
	RatingDrift  int               `json:"rating_drift"`
}

type pointsEventDTO struct {
	ID        string `json:"id"`
	MatchupID string `json:"matchup_id"`
	PairingID string `json:"pairing_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Kind      string `json:"kind"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
}

type ratingChangeDTO struct {
	UserID string `json:"user_id"`
	Before int    `json:"before"`
	After  int    `json:"after"`
	Delta  int    `json:"delta"`
}

type finalizeResultDTO struct {
	Week          weekDTO           `json:"week"`
	PointsEvents  []pointsEventDTO  `json:"points_events"`
	RatingChanges []ratingChangeDTO `json:"rating_changes"`
}

type rosterSlotDTO struct {
	TeamID         string `json:"team_id"`
	SeedIndex      int    `json:"seed_index"`
	UserID         string `json:"user_id"`
	RatingAtSubmit int    `json:"rating_at_submit"`
	RatingAtLock   *int   `json:"rating_at_lock,omitempty"`
	Active         bool   `json:"active"`
}

type ratingEventDTO struct {
	ID           string `json:"id"`
	LeagueID     string `json:"league_id"`
	UserID       string `json:"user_id"`
	Kind         string `json:"kind"`
	Before       int    `json:"before"`
	After        int    `json:"after"`
	Delta        int    `json:"delta"`
	Reason       string `json:"reason"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type teamRowDTO struct {
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	CaptainEmail string `json:"captain_email,omitempty"`
	Points       int    `json:"points"`
}

type playerRowDTO struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Points int    `json:"points"`
}

type standingsDTO struct {
	SeasonID       string         `json:"season_id"`
	Teams          []teamRowDTO   `json:"teams"`
	Players        []playerRowDTO `json:"players"`
	GeneratedAtUTC string         `json:"generated_at_utc"`
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatUTCPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatUTC(*t)
}

func pairingToDTO(ctx context.Context, p pairing.Pairing) pairingDTO {
	out := pairingDTO{
		ID:                  p.ID,
		MatchupID:           p.MatchupID,
		SeedIndex:           p.SeedIndex,
		PlayerAID:           p.PlayerAID,
		PlayerBID:           p.PlayerBID,
		RatingAAtCreate:     p.RatingAAtCreate,
		RatingBAtCreate:     p.RatingBAtCreate,
		State:               string(p.State),
		ScheduledForUTC:     formatUTCPtr(p.ScheduledFor),
		ScheduleProposedBy:  p.ScheduleProposedBy,
		ScheduleConfirmedA:  p.ScheduleConfirmedA,
		ScheduleConfirmedB:  p.ScheduleConfirmedB,
		ReportedBy:          p.ReportedBy,
		ReportedAtUTC:       formatUTCPtr(p.ReportedAt),
		ConfirmedByOpponent: p.ConfirmedByOpponent,
		DisputedBy:          p.DisputedBy,
		DisputeNote:         p.DisputeNote,
		UpdatedAtUTC:        formatUTC(p.UpdatedAt),
	}
	if p.Score != nil {
		out.Score = &scoreDTO{A: p.Score.A, B: p.Score.B}
	}
	return out
}

func deadlinesToDTO(d deadline.Deadlines) deadlinesDTO {
	return deadlinesDTO{
		Timezone:          d.Timezone,
		SubstitutionUTC:   formatUTC(d.Substitution),
		ScheduleUTC:       formatUTC(d.Schedule),
		ResultsUTC:        formatUTC(d.Results),
		SubstitutionLocal: d.SubstitutionLocal,
		ScheduleLocal:     d.ScheduleLocal,
		ResultsLocal:      d.ResultsLocal,
	}
}

func matchupToDTO(m week.Matchup) matchupDTO {
	return matchupDTO{
		ID:      m.ID,
		WeekID:  m.WeekID,
		TeamAID: m.TeamAID,
		TeamBID: m.TeamBID,
		State:   string(m.State),
	}
}

func matchupsToDTO(items []week.Matchup) []matchupDTO {
	out := make([]matchupDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchupToDTO(m))
	}
	return out
}

func pairingViewToDTO(ctx context.Context, v usecase.PairingView) pairingViewDTO {
	out := pairingViewDTO{
		Pairing:   pairingToDTO(ctx, v.Pairing),
		Matchup:   matchupToDTO(v.Matchup),
		WeekID:    v.WeekID,
		WeekIndex: v.WeekIndex,
		WeekState: string(v.WeekState),
	}
	if v.Deadlines != nil {
		d := deadlinesToDTO(*v.Deadlines)
		out.Deadlines = &d
	}
	return out
}

func weekToDTO(w week.Week) weekDTO {
	return weekDTO{
		ID:         w.ID,
		SeasonID:   w.SeasonID,
		Index:      w.Index,
		State:      string(w.State),
		OpensAtUTC: formatUTCPtr(w.OpensAt),
		LocksAtUTC: formatUTCPtr(w.LocksAt),
	}
}

func weekPlanToDTO(p usecase.WeekPlan) weekPlanDTO {
	return weekPlanDTO{Week: weekToDTO(p.Week), Matchups: matchupsToDTO(p.Matchups)}
}

func substitutionToDTO(r substitution.Request) substitutionDTO {
	return substitutionDTO{
		ID:                      r.ID,
		PairingID:               r.PairingID,
		SeasonID:                r.SeasonID,
		Side:                    string(r.Side),
		ReplacedUserID:          r.ReplacedUserID,
		SubUserID:               r.SubUserID,
		ReplacedRatingAtRequest: r.ReplacedRatingAtRequest,
		SubRatingAtRequest:      r.SubRatingAtRequest,
		Status:                  string(r.Status),
		RequestedBy:             r.RequestedBy,
		RequestedAtUTC:          formatUTC(r.RequestedAt),
		DecidedBy:               r.DecidedBy,
		DecidedAtUTC:            formatUTCPtr(r.DecidedAt),
		Note:                    r.Note,
	}
}

func substitutionsToDTO(items []substitution.Request) []substitutionDTO {
	out := make([]substitutionDTO, 0, len(items))
	for _, r := range items {
		out = append(out, substitutionToDTO(r))
	}
	return out
}

func decisionToDTO(ctx context.Context, d substitution.Decision) substitutionDecisionDTO {
	return substitutionDecisionDTO{
		Approved:     substitutionToDTO(d.Approved),
		AutoRejected: substitutionsToDTO(d.AutoRejected),
		Pairing:      pairingToDTO(ctx, d.Pairing),
		RatingDrift:  d.RatingDrift,
	}
}

func finalizeResultToDTO(ctx context.Context, res usecase.FinalizeResult) finalizeResultDTO {
	points := make([]pointsEventDTO, 0, len(res.PointsEvents))
	for _, e := range res.PointsEvents {
		points = append(points, pointsEventToDTO(e))
	}
	changes := make([]ratingChangeDTO, 0, len(res.RatingChanges))
	for _, c := range res.RatingChanges {
		changes = append(changes, ratingChangeDTO{UserID: c.UserID, Before: c.Before, After: c.After, Delta: c.Delta})
	}
	return finalizeResultDTO{
		Week:          weekToDTO(res.Week),
		PointsEvents:  points,
		RatingChanges: changes,
	}
}

func pointsEventToDTO(e standing.PointsEvent) pointsEventDTO {
	return pointsEventDTO{
		ID:        e.ID,
		MatchupID: e.MatchupID,
		PairingID: e.PairingID,
		TeamID:    e.TeamID,
		UserID:    e.UserID,
		Kind:      string(e.Kind),
		Points:    e.Points,
		Reason:    e.Reason,
	}
}

func rosterToDTO(slots []team.RosterSlot) []rosterSlotDTO {
	out := make([]rosterSlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, rosterSlotDTO{
			TeamID:         s.TeamID,
			SeedIndex:      s.SeedIndex,
			UserID:         s.UserID,
			RatingAtSubmit: s.RatingAtSubmit,
			RatingAtLock:   s.RatingAtLock,
			Active:         s.Active,
		})
	}
	return out
}

func ratingEventToDTO(e rating.Event) ratingEventDTO {
	return ratingEventDTO{
		ID:           e.ID,
		LeagueID:     e.LeagueID,
		UserID:       e.UserID,
		Kind:         string(e.Kind),
		Before:       e.Before,
		After:        e.After,
		Delta:        e.Delta,
		Reason:       e.Reason,
		CreatedAtUTC: formatUTC(e.CreatedAt),
	}
}

func standingsToDTO(ctx context.Context, s usecase.Standings) standingsDTO {
	teams := make([]teamRowDTO, 0, len(s.Teams))
	for _, row := range s.Teams {
		teams = append(teams, teamRowDTO{TeamID: row.TeamID, Name: row.Name, CaptainEmail: row.CaptainEmail, Points: row.Points})
	}
	players := make([]playerRowDTO, 0, len(s.Players))
	for _, row := range s.Players {
		players = append(players, playerRowDTO{UserID: row.UserID, Email: row.Email, Points: row.Points})
	}
	return standingsDTO{
		SeasonID:       s.SeasonID,
		Teams:          teams,
		Players:        players,
		GeneratedAtUTC: formatUTC(s.GeneratedAt),
	}
}
