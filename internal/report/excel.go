// Package report renders assignment statistics as spreadsheets.
package report

import (
	"errors"
	"fmt"
	"io"

	"holter-distributor/internal/usecase"

	"github.com/xuri/excelize/v2"
)

// MonthlyWorkbook lays out one month as a doctor-by-day grid: one row per
// doctor folder, one column per day, a total column and a totals row.
// The caller closes the returned file.
func MonthlyWorkbook(stats *usecase.MonthlyStats) (*excelize.File, error) {
	if stats == nil {
		return nil, errors.New("monthly stats are nil")
	}

	f := excelize.NewFile()
	if err := fillMonthly(f, stats); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillMonthly(f *excelize.File, stats *usecase.MonthlyStats) error {
	sheet := fmt.Sprintf("%02d.%d", stats.Month, stats.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	totalCol := stats.DaysInMonth + 2
	header := make([]interface{}, 0, totalCol)
	header = append(header, "Doctor")
	for d := 1; d <= stats.DaysInMonth; d++ {
		header = append(header, d)
	}
	header = append(header, "Total")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, doc := range stats.Doctors {
		row := make([]interface{}, totalCol)
		row[0] = doc.Name
		for d := 1; d <= stats.DaysInMonth; d++ {
			if n := doc.Days[d]; n > 0 {
				row[d] = n
			}
		}
		row[totalCol-1] = doc.Total
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	totalsRow := len(stats.Doctors) + 2
	totals := make([]interface{}, totalCol)
	totals[0] = "Total"
	for d, n := range stats.DailyTotals {
		totals[d+1] = n
	}
	totals[totalCol-1] = stats.Total
	if err := setRow(f, sheet, totalsRow, totals); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, totalsRow, totalsRow, bold); err != nil {
		return err
	}

	lastDay, err := excelize.ColumnNumberToName(totalCol - 1)
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(totalCol)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastDay, 5); err != nil {
		return err
	}
	return f.SetColWidth(sheet, lastCol, lastCol, 8)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WriteMonthly renders stats as an xlsx document into w.
func WriteMonthly(w io.Writer, stats *usecase.MonthlyStats) error {
	f, err := MonthlyWorkbook(stats)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}
