package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/week"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	if !isUniqueViolation(fmt.Errorf("insert week: %w", dup)) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation must not be treated as duplicate")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error must not be treated as duplicate")
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get week: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("unexpected not found")
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if nullTime(nil).Valid || timePtr(sql.NullTime{}) != nil {
		t.Fatalf("nil time must map to NULL")
	}
	local := time.Date(2025, time.October, 8, 9, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	got := timePtr(nullTime(&local))
	if got == nil || !got.Equal(local) || got.Location() != time.UTC {
		t.Fatalf("unexpected time round trip: %v", got)
	}

	if nullInt(nil).Valid || intPtr(sql.NullInt64{}) != nil {
		t.Fatalf("nil int must map to NULL")
	}
	v := 310
	if p := intPtr(nullInt(&v)); p == nil || *p != 310 {
		t.Fatalf("unexpected int round trip: %v", p)
	}
}

func TestPairingModelRoundTrip(t *testing.T) {
	t.Parallel()

	reportedAt := time.Date(2025, time.October, 9, 20, 0, 0, 0, time.UTC)
	p := pairing.Pairing{
		ID:                 "p-1",
		MatchupID:          "m-1",
		SeedIndex:          2,
		PlayerAID:          "u-a",
		PlayerBID:          "u-b",
		RatingAAtCreate:    300,
		RatingBAtCreate:    280,
		State:              pairing.StateReported,
		ScheduleConfirmedA: true,
		Score:              &pairing.Score{A: 2, B: 1},
		ReportedBy:         "u-a",
		ReportedAt:         &reportedAt,
		CreatedAt:          reportedAt,
		UpdatedAt:          reportedAt,
	}

	if diff := cmp.Diff(p, pairingModel(p).toDomain()); diff != "" {
		t.Fatalf("unexpected pairing round trip (-want +got):\n%s", diff)
	}

	p.Score = nil
	m := pairingModel(p)
	if m.ScoreA.Valid || m.ScoreB.Valid {
		t.Fatalf("missing score must be stored as NULL")
	}
	if m.toDomain().Score != nil {
		t.Fatalf("NULL score must load as nil")
	}
}

func TestSeasonModelAppliesDefaults(t *testing.T) {
	t.Parallel()

	got := seasonTableModel{ID: "s-1", LeagueID: "l-1", SubDeadlineDay: 3, ScheduleDeadlineDay: 4}.toDomain()
	if got.SubDeadlineDay != time.Wednesday || got.ScheduleDeadlineDay != time.Thursday || got.ResultsDeadlineDay != time.Sunday {
		t.Fatalf("unexpected deadline days: %+v", got.DeadlineDays())
	}
	if got.KFactor != rating.DefaultK || got.RatingMin != 100 || got.RatingMax != 600 {
		t.Fatalf("expected rating defaults, got %+v", got)
	}
}

func TestReadOnlySessionRejectsWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := repositories(&session{})

	checks := map[string]error{
		"create week":      repos.Weeks.Create(ctx, week.Week{ID: "w-1", SeasonID: "s-1", Index: 1, State: week.StateDraft}),
		"update pairing":   repos.Pairings.Update(ctx, pairing.Pairing{ID: "p-1"}),
		"upsert rating":    repos.Ratings.Upsert(ctx, rating.Rating{LeagueID: "l-1", UserID: "u-1", Hidden: 250}),
		"append events":    repos.Ratings.AppendEvents(ctx, nil),
		"lock roster":      repos.Teams.LockRoster(ctx, "t-1", time.Now()),
		"replace roster":   repos.Teams.ReplaceRoster(ctx, "t-1", nil, time.Now()),
		"delete by season": repos.Weeks.DeleteBySeason(ctx, "s-1"),
	}
	for name, err := range checks {
		if !errors.Is(err, store.ErrReadOnly) {
			t.Fatalf("%s: expected store.ErrReadOnly, got %v", name, err)
		}
	}

	if _, err := repos.Ratings.CreateIfAbsent(ctx, rating.Rating{LeagueID: "l-1", UserID: "u-1", Hidden: 250}); !errors.Is(err, store.ErrReadOnly) {
		t.Fatalf("create rating: expected store.ErrReadOnly, got %v", err)
	}
	if _, _, err := repos.Weeks.GetForUpdate(ctx, "w-1"); !errors.Is(err, store.ErrReadOnly) {
		t.Fatalf("row lock inside View: expected store.ErrReadOnly, got %v", err)
	}
}

func TestUpdateSessionLocksRowsItReads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		writable     bool
		ratingsTail  string
		pairingsTail string
	}{
		{
			name:         "view",
			writable:     false,
			ratingsTail:  "WHERE league_id = $1 AND user_id = ANY($2) ORDER BY user_id",
			pairingsTail: "WHERE m.week_id = $1 ORDER BY m.seq, p.seed_index",
		},
		{
			name:         "update",
			writable:     true,
			ratingsTail:  "WHERE league_id = $1 AND user_id = ANY($2) ORDER BY user_id FOR UPDATE",
			pairingsTail: "WHERE m.week_id = $1 ORDER BY m.seq, p.seed_index FOR UPDATE OF p",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &session{writable: tc.writable}

			query, args, err := (&RatingRepository{s: s}).listByUsersQuery("l-1", []string{"u-2", "u-1"}).ToSQL()
			if err != nil {
				t.Fatalf("build ratings query: %v", err)
			}
			if !strings.HasSuffix(query, tc.ratingsTail) {
				t.Fatalf("unexpected ratings query:\nwant suffix: %s\ngot: %s", tc.ratingsTail, query)
			}
			if len(args) != 2 || args[0] != "l-1" {
				t.Fatalf("unexpected ratings args: %+v", args)
			}

			query, _, err = (&PairingRepository{s: s}).byWeekQuery("w-1").ToSQL()
			if err != nil {
				t.Fatalf("build pairings query: %v", err)
			}
			if !strings.HasSuffix(query, tc.pairingsTail) {
				t.Fatalf("unexpected pairings query:\nwant suffix: %s\ngot: %s", tc.pairingsTail, query)
			}
		})
	}
}
