package querybuilder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
)

func TestSelectBuilderForUpdate(t *testing.T) {
	query, args, err := Select("id", "state").
		From("pairings").
		Where(Eq("id", "p-1")).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, state FROM pairings WHERE id = $1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "p-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderForUpdateOfJoinedTable(t *testing.T) {
	query, _, err := Select("p.id").
		From("pairings p JOIN matchups m ON m.id = p.matchup_id").
		Where(Eq("m.week_id", "w-1")).
		OrderBy("m.seq", "p.seed_index").
		ForUpdate("p").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT p.id FROM pairings p JOIN matchups m ON m.id = p.matchup_id WHERE m.week_id = $1 ORDER BY m.seq, p.seed_index FOR UPDATE OF p"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestSelectBuilderAnyAndExpr(t *testing.T) {
	ids := pq.Array([]string{"u-1", "u-2"})
	query, args, err := Select("user_id", "hidden").
		From("ratings").
		Where(Eq("league_id", "l-1"), Any("user_id", ids), Expr("hidden BETWEEN ? AND ?", 100, 600)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT user_id, hidden FROM ratings WHERE league_id = $1 AND user_id = ANY($2) AND hidden BETWEEN $3 AND $4 ORDER BY user_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "l-1" || args[3] != 600 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprKeepsUnboundMarks(t *testing.T) {
	query, args, err := Select("id").From("users").Where(Expr("LOWER(email) = ? AND note <> '?'", "a@playhub.test")).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM users WHERE LOWER(email) = $1 AND note <> '?'" || len(args) != 1 {
		t.Fatalf("unexpected query: %s %+v", query, args)
	}
}

func TestInsertBuilderOnConflict(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *InsertBuilder
		wantQuery string
	}{
		{
			name: "upsert",
			build: func() *InsertBuilder {
				return InsertInto("ratings").
					Columns("league_id", "user_id", "hidden", "updated_at").
					Values("l-1", "u-1", 275, "2025-10-13T04:00:00Z").
					OnConflictUpdate([]string{"league_id", "user_id"}, "hidden", "updated_at")
			},
			wantQuery: "INSERT INTO ratings (league_id, user_id, hidden, updated_at) VALUES ($1, $2, $3, $4) " +
				"ON CONFLICT (league_id, user_id) DO UPDATE SET hidden = EXCLUDED.hidden, updated_at = EXCLUDED.updated_at",
		},
		{
			name: "do nothing over two rows",
			build: func() *InsertBuilder {
				return InsertInto("users").
					Columns("id", "email").
					Values("u-1", "u-1@playhub.test").
					Values("u-2", "u-2@playhub.test").
					OnConflictDoNothing("id")
			},
			wantQuery: "INSERT INTO users (id, email) VALUES ($1, $2), ($3, $4) ON CONFLICT (id) DO NOTHING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, err := tt.build().ToSQL()
			if err != nil {
				t.Fatalf("build insert query: %v", err)
			}
			if query != tt.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tt.wantQuery, query)
			}
		})
	}
}

func TestInsertBuilderErrors(t *testing.T) {
	if _, _, err := InsertInto("weeks").Columns("id", "season_id").Values("w-1").ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
	if _, _, err := InsertInto("weeks").Columns("id").Values("w-1").OnConflictDoNothing().ToSQL(); err == nil {
		t.Fatalf("expected error for missing conflict target")
	}
	if _, _, err := InsertModel("weeks", 42).ToSQL(); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("weeks").
		Set("state", "FINAL").
		SetExpr("locks_at", "COALESCE(locks_at, ?)", "2025-10-13T04:00:00Z").
		Where(Eq("id", "w-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE weeks SET state = $1, locks_at = COALESCE(locks_at, $2) WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if diff := cmp.Diff([]any{"FINAL", "2025-10-13T04:00:00Z", "w-1"}, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}

	if _, _, err := Update("weeks").Set("state", "FINAL").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional update")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("matchups").Where(Eq("week_id", "w-1")).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM matchups WHERE week_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected query: %s %+v", query, args)
	}

	if _, _, err := DeleteFrom("matchups").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string `db:"id"`
		SeasonID string `db:"season_id,omitempty"`
		Index    int    `db:"week_index"`
		Ignored  string `db:"-"`
		internal string
	}

	query, args, err := InsertModel("weeks", &row{ID: "w-1", SeasonID: "s-1", Index: 2, internal: "x"}).ToSQL()
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	if query != "INSERT INTO weeks (id, season_id, week_index) VALUES ($1, $2, $3)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 3 || args[2] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
