package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSeason(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "season.yaml")
	content := `
name: Fall Ladder
start_date: "2025-09-01"
regular_weeks: 2
teams: [Dinkers, Aces, Backhands, Cross Court]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScheduleCmd_Prints(t *testing.T) {
	out, err := run(t, "schedule", "--season", writeSeason(t))
	require.NoError(t, err)
	require.Contains(t, out, "Fall Ladder (America/New_York)")
	require.Contains(t, out, "Week 1  opens 2025-09-01")
	require.Contains(t, out, "Week 2  opens 2025-09-08")
	require.NotContains(t, out, "Week 3")
	require.Contains(t, out, "Aces vs Dinkers")
}

func TestScheduleCmd_ExportsWorkbook(t *testing.T) {
	xlsx := filepath.Join(t.TempDir(), "fall.xlsx")
	out, err := run(t, "schedule", "--season", writeSeason(t), "--xlsx", xlsx)
	require.NoError(t, err)
	require.Contains(t, out, "wrote 2 week(s)")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 5)
}

func TestDeadlinesCmd(t *testing.T) {
	out, err := run(t, "deadlines", "--opens-at", "2025-09-01T16:00:00Z", "--substitution", "tue", "--schedule", "thu", "--results", "sun")
	require.NoError(t, err)
	require.Contains(t, out, "substitution 2025-09-02T23:59:59-04:00")
	require.Contains(t, out, "schedule     2025-09-04T23:59:59-04:00")
	require.Contains(t, out, "results      2025-09-07T23:59:59-04:00")

	_, err = run(t, "deadlines", "--results", "funday")
	require.Error(t, err)
}

func TestDeltaCmd(t *testing.T) {
	out, err := run(t, "delta", "--self", "250", "--opp", "250", "--games-self", "2", "--games-opp", "1")
	require.NoError(t, err)
	// Even ratings with a 2-1 win: 25 * (0.75 - 0.5) = 6.25, rounded to 6.
	require.True(t, strings.Contains(out, "player +6  (250 -> 256)"), out)
	require.Contains(t, out, "opponent -6  (250 -> 244)")

	_, err = run(t, "delta", "--games-self", "3")
	require.Error(t, err)
}

func TestMigrateCmd_RequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := run(t, "migrate", "version", "--dir", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_URL is required")
}
