package pairing

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxNoteLength bounds dispute notes.
const MaxNoteLength = 2000

var (
	ErrNotParticipant = errors.New("caller is not a participant of this pairing")
	ErrNotAdmin       = errors.New("league admin required")
	ErrFinal          = errors.New("pairing is already final")
	ErrInvalidScore   = errors.New("score must be one of 2-0, 2-1, 1-2, 0-2")
	ErrNoProposal     = errors.New("no schedule time has been proposed")
	ErrNoReport       = errors.New("no result has been reported")
	ErrOwnReport      = errors.New("reporter cannot confirm their own result")
	ErrNoteTooLong    = errors.New("dispute note is too long")
)

// Actor is the caller of a lifecycle transition.
type Actor struct {
	UserID string
	Admin  bool
}

// Authorize rejects callers that neither play the pairing nor administer its league.
func (p *Pairing) Authorize(a Actor) error {
	if a.Admin || p.Participant(a.UserID) {
		return nil
	}
	return ErrNotParticipant
}

// ProposeSchedule sets or replaces the proposed time. The proposer's side is
// marked confirmed and the other side must confirm again. A non-playing admin
// sets the time for both sides.
func (p *Pairing) ProposeSchedule(a Actor, at time.Time) error {
	if err := p.Authorize(a); err != nil {
		return err
	}
	if p.IsFinal() {
		return ErrFinal
	}

	scheduled := at.UTC()
	p.ScheduledFor = &scheduled
	p.ScheduleProposedBy = a.UserID

	onA, onB := a.UserID == p.PlayerAID, a.UserID == p.PlayerBID
	switch {
	case onA || onB:
		p.ScheduleConfirmedA = onA
		p.ScheduleConfirmedB = onB
	default:
		p.ScheduleConfirmedA = true
		p.ScheduleConfirmedB = true
	}
	p.syncScheduleState()
	return nil
}

// ConfirmSchedule accepts the currently proposed time for the caller's side.
func (p *Pairing) ConfirmSchedule(a Actor) error {
	if err := p.Authorize(a); err != nil {
		return err
	}
	if p.IsFinal() {
		return ErrFinal
	}
	if p.ScheduledFor == nil {
		return ErrNoProposal
	}

	onA, onB := a.UserID == p.PlayerAID, a.UserID == p.PlayerBID
	if onA {
		p.ScheduleConfirmedA = true
	}
	if onB {
		p.ScheduleConfirmedB = true
	}
	if !onA && !onB {
		p.ScheduleConfirmedA = true
		p.ScheduleConfirmedB = true
	}
	p.syncScheduleState()
	return nil
}

// syncScheduleState only moves between the two pre-report states.
func (p *Pairing) syncScheduleState() {
	both := p.ScheduleConfirmedA && p.ScheduleConfirmedB
	switch {
	case p.State == StatePendingSchedule && both:
		p.State = StateScheduled
	case p.State == StateScheduled && !both:
		p.State = StatePendingSchedule
	}
}

// Report records a result. A report that differs from an existing one
// moves the pairing to DISPUTED.
func (p *Pairing) Report(a Actor, score Score, now time.Time) error {
	if err := p.Authorize(a); err != nil {
		return err
	}
	if p.IsFinal() {
		return ErrFinal
	}
	if !score.Valid() {
		return fmt.Errorf("%w: got %s", ErrInvalidScore, score)
	}

	next := StateReported
	if p.Score != nil && *p.Score != score {
		next = StateDisputed
	}

	reported := score
	reportedAt := now.UTC()
	p.Score = &reported
	p.ReportedBy = a.UserID
	p.ReportedAt = &reportedAt
	p.ConfirmedByOpponent = false
	p.State = next
	return nil
}

// ConfirmResult accepts the reported result and finalizes the pairing.
func (p *Pairing) ConfirmResult(a Actor) error {
	if err := p.Authorize(a); err != nil {
		return err
	}
	if p.IsFinal() {
		return ErrFinal
	}
	if p.Score == nil || p.ReportedBy == "" {
		return ErrNoReport
	}
	if a.UserID == p.ReportedBy && !a.Admin {
		return ErrOwnReport
	}

	p.ConfirmedByOpponent = true
	p.State = StateFinal
	return nil
}

// Dispute flags the pairing for admin attention. Admins may reopen a final pairing.
func (p *Pairing) Dispute(a Actor, note string) error {
	if err := p.Authorize(a); err != nil {
		return err
	}
	if p.IsFinal() && !a.Admin {
		return ErrFinal
	}
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("%w: max %d characters", ErrNoteTooLong, MaxNoteLength)
	}

	p.State = StateDisputed
	p.DisputedBy = a.UserID
	if note != "" {
		p.DisputeNote = note
	}
	return nil
}

// Resolve is the admin override: the score becomes final and auto-confirmed.
func (p *Pairing) Resolve(a Actor, score Score, now time.Time) error {
	if !a.Admin {
		return ErrNotAdmin
	}
	if !score.Valid() {
		return fmt.Errorf("%w: got %s", ErrInvalidScore, score)
	}

	resolved := score
	reportedAt := now.UTC()
	p.Score = &resolved
	p.ReportedBy = a.UserID
	p.ReportedAt = &reportedAt
	p.ConfirmedByOpponent = true
	p.State = StateFinal
	return nil
}
