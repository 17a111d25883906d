package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
)

func TestRatingService_SetRating(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seed := memory.DemoSeed()
	seed.Users = append(seed.Users, user.User{ID: "u-rookie", Email: "rookie@playhub.test"})
	f := newLeagueFixture(t, seed)

	event, err := f.ratings.SetRating(ctx, f.admin, memory.DemoLeagueID, "u-rookie", 275, "")
	if err != nil {
		t.Fatalf("set rating: %v", err)
	}
	if event.Kind != rating.EventAdminSet || event.Before != rating.Default || event.After != 275 || event.Delta != 25 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Reason != "Admin set" {
		t.Fatalf("unexpected reason: got=%q want=%q", event.Reason, "Admin set")
	}
	if hidden, exists := f.hiddenRating(t, "u-rookie"); !exists || hidden != 275 {
		t.Fatalf("unexpected stored rating: exists=%v hidden=%d", exists, hidden)
	}

	var events []rating.Event
	err = f.store.View(ctx, func(ctx context.Context, r store.Repositories) error {
		var err error
		events, err = r.Ratings.ListEventsByUser(ctx, memory.DemoLeagueID, "u-rookie")
		return err
	})
	if err != nil {
		t.Fatalf("list rating events: %v", err)
	}
	if len(events) != 1 || events[0].ID != event.ID {
		t.Fatalf("unexpected rating ledger: %+v", events)
	}
}

func TestRatingService_SetRatingRequiresAdmin(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t, memory.DemoSeed())
	_, err := f.ratings.SetRating(context.Background(), captain("u-aces-1", "t-aces"), memory.DemoLeagueID, "u-aces-2", 600, "boost")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if hidden, _ := f.hiddenRating(t, "u-aces-2"); hidden == 600 {
		t.Fatalf("rating must not change on rejected request")
	}
}
