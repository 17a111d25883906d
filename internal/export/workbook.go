// Package export renders a season plan as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/playhub-league/internal/seasonfile"
)

const (
	scheduleSheet = "Schedule"
	deadlineSheet = "Deadlines"
)

// Workbook builds a "Schedule" sheet with one row per matchup and a
// "Deadlines" sheet with one row per week. Times are season-local.
func Workbook(plan seasonfile.Plan) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(deadlineSheet); err != nil {
		return nil, fmt.Errorf("create deadlines sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2F5597"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRows(f, scheduleSheet, headerStyle, []string{"Week", "Opens", "Home", "Away"}, scheduleRows(plan)); err != nil {
		return nil, err
	}
	if err := writeRows(f, deadlineSheet, headerStyle, []string{"Week", "Opens", "Substitution", "Schedule", "Results"}, deadlineRows(plan)); err != nil {
		return nil, err
	}

	if plan.Name != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: plan.Name}); err != nil {
			return nil, fmt.Errorf("set doc props: %w", err)
		}
	}
	return f, nil
}

// Write renders plan into w.
func Write(w io.Writer, plan seasonfile.Plan) error {
	f, err := Workbook(plan)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func scheduleRows(plan seasonfile.Plan) [][]any {
	var rows [][]any
	for _, w := range plan.Weeks {
		opens := w.OpensAt.Format("2006-01-02")
		for _, p := range w.Pairs {
			rows = append(rows, []any{w.Index, opens, p.TeamA, p.TeamB})
		}
	}
	return rows
}

func deadlineRows(plan seasonfile.Plan) [][]any {
	rows := make([][]any, 0, len(plan.Weeks))
	for _, w := range plan.Weeks {
		rows = append(rows, []any{
			w.Index,
			w.OpensAt.Format("2006-01-02"),
			w.Deadlines.SubstitutionLocal,
			w.Deadlines.ScheduleLocal,
			w.Deadlines.ResultsLocal,
		})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) error {
	headerCells := make([]any, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
