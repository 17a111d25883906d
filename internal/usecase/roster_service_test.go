package usecase

import (
	"context"
	"errors"
	"testing"

	crdberrors "github.com/cockroachdb/errors"

	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/team"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
)

// rosterSeed adds four strong free agents whose combined displayed rating
// is above the demo team cap.
func rosterSeed() memory.Seed {
	seed := memory.DemoSeed()
	for _, id := range []string{"u-free-1", "u-free-2", "u-free-3", "u-free-4"} {
		seed.Users = append(seed.Users, user.User{ID: id, Email: id + "@playhub.test"})
		seed.Ratings = append(seed.Ratings, rating.Rating{LeagueID: memory.DemoLeagueID, UserID: id, Hidden: 420})
	}
	return seed
}

func TestRosterService_SubmitAndApprove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture(t, rosterSeed())
	aces := captain("u-aces-1", "t-aces")

	slots, err := f.rosters.Submit(ctx, aces, "t-aces", []SlotInput{
		{SeedIndex: 1, UserID: "u-aces-2"},
		{SeedIndex: 2, UserID: "u-aces-1"},
		{SeedIndex: 3, Email: "U-ACES-3@playhub.test"},
		{SeedIndex: 4, UserID: "u-free-1"},
	})
	if err != nil {
		t.Fatalf("submit roster: %v", err)
	}
	if len(slots) != 4 || slots[3].RatingAtSubmit != 420 {
		t.Fatalf("unexpected submitted slots: %+v", slots)
	}

	// A resubmitted roster is no longer schedulable until an admin approves it.
	var stored team.Team
	var storedSlots []team.RosterSlot
	read := func() {
		t.Helper()
		err := f.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
			var err error
			if stored, _, err = r.Teams.GetByID(ctx, "t-aces"); err != nil {
				return err
			}
			storedSlots, err = r.Teams.ListSlots(ctx, "t-aces")
			return err
		})
		if err != nil {
			t.Fatalf("read team: %v", err)
		}
	}
	read()
	if team.Schedulable(stored, storedSlots, 4) {
		t.Fatalf("resubmitted roster must not be schedulable before approval")
	}

	if _, err := f.rosters.Approve(ctx, aces, "t-aces"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for captain approval, got %v", err)
	}
	approved, err := f.rosters.Approve(ctx, f.admin, "t-aces")
	if err != nil {
		t.Fatalf("approve roster: %v", err)
	}
	for _, s := range approved {
		if s.RatingAtLock == nil || *s.RatingAtLock != s.RatingAtSubmit {
			t.Fatalf("expected locked rating to equal submitted rating: %+v", s)
		}
	}
	read()
	if !team.Schedulable(stored, storedSlots, 4) {
		t.Fatalf("approved roster must be schedulable")
	}
}

func TestRosterService_SubmitRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		c         user.Capability
		slots     []SlotInput
		targetErr error
	}{
		{
			name: "over team cap",
			c:    captain("u-aces-1", "t-aces"),
			slots: []SlotInput{
				{SeedIndex: 1, UserID: "u-free-1"},
				{SeedIndex: 2, UserID: "u-free-2"},
				{SeedIndex: 3, UserID: "u-free-3"},
				{SeedIndex: 4, UserID: "u-free-4"},
			},
			targetErr: ErrRuleViolation,
		},
		{
			name: "missing seed",
			c:    captain("u-aces-1", "t-aces"),
			slots: []SlotInput{
				{SeedIndex: 1, UserID: "u-aces-1"},
				{SeedIndex: 2, UserID: "u-aces-2"},
				{SeedIndex: 3, UserID: "u-aces-3"},
			},
			targetErr: ErrInvalidInput,
		},
		{
			name: "duplicate user",
			c:    captain("u-aces-1", "t-aces"),
			slots: []SlotInput{
				{SeedIndex: 1, UserID: "u-aces-1"},
				{SeedIndex: 2, UserID: "u-aces-1"},
				{SeedIndex: 3, UserID: "u-aces-3"},
				{SeedIndex: 4, UserID: "u-aces-4"},
			},
			targetErr: ErrInvalidInput,
		},
		{
			name: "captain of another team",
			c:    captain("u-dinkers-1", "t-dinkers"),
			slots: []SlotInput{
				{SeedIndex: 1, UserID: "u-aces-1"},
				{SeedIndex: 2, UserID: "u-aces-2"},
				{SeedIndex: 3, UserID: "u-aces-3"},
				{SeedIndex: 4, UserID: "u-aces-4"},
			},
			targetErr: ErrForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newLeagueFixture(t, rosterSeed())
			_, err := f.rosters.Submit(context.Background(), tc.c, "t-aces", tc.slots)
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestRosterService_CapViolationCarriesHint(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t, rosterSeed())
	_, err := f.rosters.Submit(context.Background(), f.admin, "t-aces", []SlotInput{
		{SeedIndex: 1, UserID: "u-free-1"},
		{SeedIndex: 2, UserID: "u-free-2"},
		{SeedIndex: 3, UserID: "u-free-3"},
		{SeedIndex: 4, UserID: "u-free-4"},
	})
	if !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("expected ErrRuleViolation, got %v", err)
	}
	hints := crdberrors.GetAllHints(err)
	if len(hints) != 1 || hints[0] != "lower the combined displayed rating by 280" {
		t.Fatalf("unexpected hints: %v", hints)
	}
}
