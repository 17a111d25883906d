package substitution

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// AutoRejectNote is stamped on siblings rejected by an approval.
const AutoRejectNote = "Auto-rejected (another request approved)"

var (
	ErrSameUser        = errors.New("substitute must differ from the replaced player")
	ErrRatingCeiling   = errors.New("substitute rating exceeds the replaced player's rating")
	ErrNotPending      = errors.New("substitution request is not pending")
	ErrAlreadyApproved = errors.New("pairing already has an approved substitution")
)

// Request swaps the player on one side of a pairing once approved.
// Rating snapshots are displayed values at request time.
type Request struct {
	ID                      string
	PairingID               string
	SeasonID                string
	Side                    pairing.Side
	ReplacedUserID          string
	SubUserID               string
	ReplacedRatingAtRequest int
	SubRatingAtRequest      int
	Status                  Status
	RequestedBy             string
	RequestedAt             time.Time
	DecidedBy               string
	DecidedAt               *time.Time
	Note                    string
}

// InferSide picks the side a requester replaces: the one they captain when
// that is unambiguous, otherwise A.
func InferSide(captainsA, captainsB bool) pairing.Side {
	if captainsB && !captainsA {
		return pairing.SideB
	}
	return pairing.SideA
}

// CheckCeiling enforces that a substitution never raises a side's displayed strength.
func CheckCeiling(subDisplayed, replacedDisplayed int) error {
	if subDisplayed > replacedDisplayed {
		return fmt.Errorf("%w: %d > %d", ErrRatingCeiling, subDisplayed, replacedDisplayed)
	}
	return nil
}

// Decision is the outcome of approving one request among a pairing's requests.
type Decision struct {
	Approved     Request
	AutoRejected []Request
	Pairing      pairing.Pairing
	// RatingDrift is the substitute's displayed rating at approval minus the
	// snapshot taken at request time. The snapshot is kept either way.
	RatingDrift int
}

// Approve applies an approval to the target request, its siblings and the
// pairing. The substitute inherits the request's rating snapshot.
func Approve(p pairing.Pairing, target Request, siblings []Request, decidedBy string, now time.Time) (Decision, error) {
	if target.Status != StatusPending {
		return Decision{}, fmt.Errorf("%w: status=%s", ErrNotPending, target.Status)
	}
	for _, s := range siblings {
		if s.ID != target.ID && s.Status == StatusApproved {
			return Decision{}, fmt.Errorf("%w: request=%s", ErrAlreadyApproved, s.ID)
		}
	}

	decidedAt := now.UTC()
	approved := target
	approved.Status = StatusApproved
	approved.DecidedBy = decidedBy
	approved.DecidedAt = &decidedAt

	switch target.Side {
	case pairing.SideB:
		p.PlayerBID = target.SubUserID
		p.RatingBAtCreate = target.SubRatingAtRequest
	default:
		p.PlayerAID = target.SubUserID
		p.RatingAAtCreate = target.SubRatingAtRequest
	}

	rejected := make([]Request, 0, len(siblings))
	for _, s := range siblings {
		if s.ID == target.ID || s.Status != StatusPending {
			continue
		}
		at := decidedAt
		s.Status = StatusRejected
		s.DecidedBy = decidedBy
		s.DecidedAt = &at
		s.Note = AutoRejectNote
		rejected = append(rejected, s)
	}

	return Decision{Approved: approved, AutoRejected: rejected, Pairing: p}, nil
}

// Reject marks a pending request rejected.
func Reject(r Request, decidedBy, note string, now time.Time) (Request, error) {
	if r.Status != StatusPending {
		return Request{}, fmt.Errorf("%w: status=%s", ErrNotPending, r.Status)
	}
	decidedAt := now.UTC()
	r.Status = StatusRejected
	r.DecidedBy = decidedBy
	r.DecidedAt = &decidedAt
	r.Note = note
	return r, nil
}
