package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/standing"
	"github.com/riskibarqy/playhub-league/internal/domain/substitution"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

type leagueTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type seasonTableModel struct {
	ID                  string    `db:"id"`
	LeagueID            string    `db:"league_id"`
	Name                string    `db:"name"`
	RosterSize          int       `db:"roster_size"`
	RegularWeeks        int       `db:"regular_weeks"`
	Timezone            string    `db:"timezone"`
	SubDeadlineDay      int       `db:"sub_deadline_day"`
	ScheduleDeadlineDay int       `db:"schedule_deadline_day"`
	ResultsDeadlineDay  int       `db:"results_deadline_day"`
	RatingMin           int       `db:"rating_min"`
	RatingMax           int       `db:"rating_max"`
	KFactor             int       `db:"k_factor"`
	TeamRatingCap       int       `db:"team_rating_cap"`
	CreatedAt           time.Time `db:"created_at"`
}

func (m seasonTableModel) toDomain() league.Season {
	return league.Season{
		ID:                  m.ID,
		LeagueID:            m.LeagueID,
		Name:                m.Name,
		RosterSize:          m.RosterSize,
		RegularWeeks:        m.RegularWeeks,
		Timezone:            m.Timezone,
		SubDeadlineDay:      time.Weekday(m.SubDeadlineDay),
		ScheduleDeadlineDay: time.Weekday(m.ScheduleDeadlineDay),
		ResultsDeadlineDay:  time.Weekday(m.ResultsDeadlineDay),
		RatingMin:           m.RatingMin,
		RatingMax:           m.RatingMax,
		KFactor:             m.KFactor,
		TeamRatingCap:       m.TeamRatingCap,
		CreatedAt:           m.CreatedAt.UTC(),
	}.WithDefaults()
}

type memberTableModel struct {
	LeagueID string `db:"league_id"`
	UserID   string `db:"user_id"`
	Role     string `db:"role"`
}

type userTableModel struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{ID: m.ID, Email: m.Email, DisplayName: m.DisplayName}
}

type teamTableModel struct {
	ID                string       `db:"id"`
	SeasonID          string       `db:"season_id"`
	Name              string       `db:"name"`
	CaptainUserID     string       `db:"captain_user_id"`
	RosterSubmittedAt sql.NullTime `db:"roster_submitted_at"`
	RosterApprovedAt  sql.NullTime `db:"roster_approved_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:                m.ID,
		SeasonID:          m.SeasonID,
		Name:              m.Name,
		CaptainUserID:     m.CaptainUserID,
		RosterSubmittedAt: timePtr(m.RosterSubmittedAt),
		RosterApprovedAt:  timePtr(m.RosterApprovedAt),
	}
}

type rosterSlotTableModel struct {
	TeamID         string        `db:"team_id"`
	SeedIndex      int           `db:"seed_index"`
	UserID         string        `db:"user_id"`
	RatingAtSubmit int           `db:"rating_at_submit"`
	RatingAtLock   sql.NullInt64 `db:"rating_at_lock"`
	Active         bool          `db:"active"`
}

func (m rosterSlotTableModel) toDomain() team.RosterSlot {
	return team.RosterSlot{
		TeamID:         m.TeamID,
		SeedIndex:      m.SeedIndex,
		UserID:         m.UserID,
		RatingAtSubmit: m.RatingAtSubmit,
		RatingAtLock:   intPtr(m.RatingAtLock),
		Active:         m.Active,
	}
}

type weekTableModel struct {
	ID        string       `db:"id"`
	SeasonID  string       `db:"season_id"`
	Index     int          `db:"week_index"`
	State     string       `db:"state"`
	OpensAt   sql.NullTime `db:"opens_at"`
	LocksAt   sql.NullTime `db:"locks_at"`
	CreatedAt time.Time    `db:"created_at"`
}

func weekModel(w week.Week) weekTableModel {
	return weekTableModel{
		ID:        w.ID,
		SeasonID:  w.SeasonID,
		Index:     w.Index,
		State:     string(w.State),
		OpensAt:   nullTime(w.OpensAt),
		LocksAt:   nullTime(w.LocksAt),
		CreatedAt: w.CreatedAt.UTC(),
	}
}

func (m weekTableModel) toDomain() week.Week {
	return week.Week{
		ID:        m.ID,
		SeasonID:  m.SeasonID,
		Index:     m.Index,
		State:     week.State(m.State),
		OpensAt:   timePtr(m.OpensAt),
		LocksAt:   timePtr(m.LocksAt),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type matchupTableModel struct {
	ID      string `db:"id"`
	WeekID  string `db:"week_id"`
	TeamAID string `db:"team_a_id"`
	TeamBID string `db:"team_b_id"`
	State   string `db:"state"`
}

func (m matchupTableModel) toDomain() week.Matchup {
	return week.Matchup{
		ID:      m.ID,
		WeekID:  m.WeekID,
		TeamAID: m.TeamAID,
		TeamBID: m.TeamBID,
		State:   week.MatchupState(m.State),
	}
}

type pairingTableModel struct {
	ID                  string        `db:"id"`
	MatchupID           string        `db:"matchup_id"`
	SeedIndex           int           `db:"seed_index"`
	PlayerAID           string        `db:"player_a_id"`
	PlayerBID           string        `db:"player_b_id"`
	RatingAAtCreate     int           `db:"rating_a_at_create"`
	RatingBAtCreate     int           `db:"rating_b_at_create"`
	State               string        `db:"state"`
	ScheduledFor        sql.NullTime  `db:"scheduled_for"`
	ScheduleProposedBy  string        `db:"schedule_proposed_by"`
	ScheduleConfirmedA  bool          `db:"schedule_confirmed_a"`
	ScheduleConfirmedB  bool          `db:"schedule_confirmed_b"`
	ScoreA              sql.NullInt64 `db:"score_a"`
	ScoreB              sql.NullInt64 `db:"score_b"`
	ReportedBy          string        `db:"reported_by"`
	ReportedAt          sql.NullTime  `db:"reported_at"`
	ConfirmedByOpponent bool          `db:"confirmed_by_opponent"`
	DisputedBy          string        `db:"disputed_by"`
	DisputeNote         string        `db:"dispute_note"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

func pairingModel(p pairing.Pairing) pairingTableModel {
	m := pairingTableModel{
		ID:                  p.ID,
		MatchupID:           p.MatchupID,
		SeedIndex:           p.SeedIndex,
		PlayerAID:           p.PlayerAID,
		PlayerBID:           p.PlayerBID,
		RatingAAtCreate:     p.RatingAAtCreate,
		RatingBAtCreate:     p.RatingBAtCreate,
		State:               string(p.State),
		ScheduledFor:        nullTime(p.ScheduledFor),
		ScheduleProposedBy:  p.ScheduleProposedBy,
		ScheduleConfirmedA:  p.ScheduleConfirmedA,
		ScheduleConfirmedB:  p.ScheduleConfirmedB,
		ReportedBy:          p.ReportedBy,
		ReportedAt:          nullTime(p.ReportedAt),
		ConfirmedByOpponent: p.ConfirmedByOpponent,
		DisputedBy:          p.DisputedBy,
		DisputeNote:         p.DisputeNote,
		CreatedAt:           p.CreatedAt.UTC(),
		UpdatedAt:           p.UpdatedAt.UTC(),
	}
	if p.Score != nil {
		m.ScoreA = sql.NullInt64{Int64: int64(p.Score.A), Valid: true}
		m.ScoreB = sql.NullInt64{Int64: int64(p.Score.B), Valid: true}
	}
	return m
}

func (m pairingTableModel) toDomain() pairing.Pairing {
	p := pairing.Pairing{
		ID:                  m.ID,
		MatchupID:           m.MatchupID,
		SeedIndex:           m.SeedIndex,
		PlayerAID:           m.PlayerAID,
		PlayerBID:           m.PlayerBID,
		RatingAAtCreate:     m.RatingAAtCreate,
		RatingBAtCreate:     m.RatingBAtCreate,
		State:               pairing.State(m.State),
		ScheduledFor:        timePtr(m.ScheduledFor),
		ScheduleProposedBy:  m.ScheduleProposedBy,
		ScheduleConfirmedA:  m.ScheduleConfirmedA,
		ScheduleConfirmedB:  m.ScheduleConfirmedB,
		ReportedBy:          m.ReportedBy,
		ReportedAt:          timePtr(m.ReportedAt),
		ConfirmedByOpponent: m.ConfirmedByOpponent,
		DisputedBy:          m.DisputedBy,
		DisputeNote:         m.DisputeNote,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
	if m.ScoreA.Valid && m.ScoreB.Valid {
		p.Score = &pairing.Score{A: int(m.ScoreA.Int64), B: int(m.ScoreB.Int64)}
	}
	return p
}

type substitutionTableModel struct {
	ID                      string       `db:"id"`
	PairingID               string       `db:"pairing_id"`
	SeasonID                string       `db:"season_id"`
	Side                    string       `db:"side"`
	ReplacedUserID          string       `db:"replaced_user_id"`
	SubUserID               string       `db:"sub_user_id"`
	ReplacedRatingAtRequest int          `db:"replaced_rating_at_request"`
	SubRatingAtRequest      int          `db:"sub_rating_at_request"`
	Status                  string       `db:"status"`
	RequestedBy             string       `db:"requested_by"`
	RequestedAt             time.Time    `db:"requested_at"`
	DecidedBy               string       `db:"decided_by"`
	DecidedAt               sql.NullTime `db:"decided_at"`
	Note                    string       `db:"note"`
}

func substitutionModel(r substitution.Request) substitutionTableModel {
	return substitutionTableModel{
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
		RequestedAt:             r.RequestedAt.UTC(),
		DecidedBy:               r.DecidedBy,
		DecidedAt:               nullTime(r.DecidedAt),
		Note:                    r.Note,
	}
}

func (m substitutionTableModel) toDomain() substitution.Request {
	return substitution.Request{
		ID:                      m.ID,
		PairingID:               m.PairingID,
		SeasonID:                m.SeasonID,
		Side:                    pairing.Side(m.Side),
		ReplacedUserID:          m.ReplacedUserID,
		SubUserID:               m.SubUserID,
		ReplacedRatingAtRequest: m.ReplacedRatingAtRequest,
		SubRatingAtRequest:      m.SubRatingAtRequest,
		Status:                  substitution.Status(m.Status),
		RequestedBy:             m.RequestedBy,
		RequestedAt:             m.RequestedAt.UTC(),
		DecidedBy:               m.DecidedBy,
		DecidedAt:               timePtr(m.DecidedAt),
		Note:                    m.Note,
	}
}

type ratingTableModel struct {
	LeagueID  string    `db:"league_id"`
	UserID    string    `db:"user_id"`
	Hidden    int       `db:"hidden"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m ratingTableModel) toDomain() rating.Rating {
	return rating.Rating{LeagueID: m.LeagueID, UserID: m.UserID, Hidden: m.Hidden, UpdatedAt: m.UpdatedAt.UTC()}
}

type ratingEventTableModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	SeasonID  string    `db:"season_id"`
	WeekID    string    `db:"week_id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	Before    int       `db:"rating_before"`
	After     int       `db:"rating_after"`
	Delta     int       `db:"delta"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func (m ratingEventTableModel) toDomain() rating.Event {
	return rating.Event{
		ID:        m.ID,
		LeagueID:  m.LeagueID,
		SeasonID:  m.SeasonID,
		WeekID:    m.WeekID,
		UserID:    m.UserID,
		Kind:      rating.EventKind(m.Kind),
		Before:    m.Before,
		After:     m.After,
		Delta:     m.Delta,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type pointsEventTableModel struct {
	ID        string    `db:"id"`
	SeasonID  string    `db:"season_id"`
	WeekID    string    `db:"week_id"`
	MatchupID string    `db:"matchup_id"`
	PairingID string    `db:"pairing_id"`
	TeamID    string    `db:"team_id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	Points    int       `db:"points"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func (m pointsEventTableModel) toDomain() standing.PointsEvent {
	return standing.PointsEvent{
		ID:        m.ID,
		SeasonID:  m.SeasonID,
		WeekID:    m.WeekID,
		MatchupID: m.MatchupID,
		PairingID: m.PairingID,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Kind:      standing.PointsKind(m.Kind),
		Points:    m.Points,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
