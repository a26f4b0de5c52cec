package report

import (
	"bytes"
	"io"
	"testing"

	"holter-distributor/internal/usecase"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleStats() *usecase.MonthlyStats {
	totals := make([]int, 30)
	totals[0] = 3
	totals[29] = 1
	return &usecase.MonthlyStats{
		Year:        2026,
		Month:       4,
		DaysInMonth: 30,
		Doctors: []usecase.DoctorMonth{
			{Folder: "olena", Name: "Olena Petrivna", Days: map[int]int{1: 2, 30: 1}, Total: 3},
			{Folder: "ivan", Name: "Ivan Ivanovych", Days: map[int]int{1: 1}, Total: 1},
		},
		DailyTotals: totals,
		Total:       4,
	}
}

func TestMonthlyWorkbook(t *testing.T) {
	f, err := MonthlyWorkbook(sampleStats())
	require.NoError(t, err)
	defer f.Close()

	sheet := "04.2026"
	require.Equal(t, []string{sheet}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	require.Equal(t, "Doctor", get("A1"))
	require.Equal(t, "1", get("B1"))
	require.Equal(t, "30", get("AE1"))
	require.Equal(t, "Total", get("AF1"))

	require.Equal(t, "Olena Petrivna", get("A2"))
	require.Equal(t, "2", get("B2"))
	require.Equal(t, "", get("C2"))
	require.Equal(t, "1", get("AE2"))
	require.Equal(t, "3", get("AF2"))

	require.Equal(t, "Total", get("A4"))
	require.Equal(t, "3", get("B4"))
	require.Equal(t, "4", get("AF4"))
}

func TestWriteMonthly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthly(&buf, sampleStats()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("04.2026", "A3")
	require.NoError(t, err)
	require.Equal(t, "Ivan Ivanovych", v)
}

func TestMonthlyWorkbook_Nil(t *testing.T) {
	_, err := MonthlyWorkbook(nil)
	require.Error(t, err)
	require.Error(t, WriteMonthly(io.Discard, nil))
}

func TestMonthlyWorkbook_GridTooWide(t *testing.T) {
	stats := sampleStats()
	stats.DaysInMonth = excelize.MaxColumns
	_, err := MonthlyWorkbook(stats)
	require.Error(t, err)
}
