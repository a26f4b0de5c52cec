package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStationCode(t *testing.T) {
	require.Equal(t, "XY", StationCode("xy12345.zhr"))
	require.Equal(t, "AB", NewWorkItem("/in/AB999.ZHR").StationCode())
	require.Equal(t, "A", StationCode("a"))
	require.Equal(t, "", StationCode(""))
}

func TestIsWorkItemName(t *testing.T) {
	require.True(t, IsWorkItemName("AB1.zhr"))
	require.True(t, IsWorkItemName("AB1.ZHR"))
	require.True(t, IsWorkItemName("AB1.Zhr"))
	require.False(t, IsWorkItemName("AB1.zhr.tmp"))
	require.False(t, IsWorkItemName("AB1.txt"))
	require.False(t, IsWorkItemName("zhr"))
}

func TestBusinessDay(t *testing.T) {
	t.Run("evening offset moves late items to the next day", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
		require.Equal(t, "11.03.2026", FormatDay(BusinessDay(now, 6)))
	})

	t.Run("zero offset keeps the calendar day", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
		require.Equal(t, "10.03.2026", FormatDay(BusinessDay(now, 0)))
	})

	t.Run("before the cutoff stays on the same day", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 17, 59, 0, 0, time.Local)
		require.Equal(t, "10.03.2026", FormatDay(BusinessDay(now, 6)))
	})

	t.Run("year boundary", func(t *testing.T) {
		now := time.Date(2026, time.December, 31, 20, 0, 0, 0, time.Local)
		require.Equal(t, "01.01.2027", FormatDay(BusinessDay(now, 6)))
	})
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("05.07.2026")
	require.NoError(t, err)
	require.Equal(t, 5, day.Day())
	require.Equal(t, time.July, day.Month())

	_, err = ParseDay("2026-07-05")
	require.Error(t, err)
}

func TestWorker_StationLimitFor(t *testing.T) {
	item := NewWorkItem("/in/AB123.zhr")

	t.Run("station keyed", func(t *testing.T) {
		w := &Worker{LimitKey: StationLimitKeyStation, StationLimits: map[string]int{"AB": 2}}
		limit, ok := w.StationLimitFor(item)
		require.True(t, ok)
		require.Equal(t, 2, limit)
	})

	t.Run("item name keyed ignores station codes", func(t *testing.T) {
		w := &Worker{LimitKey: StationLimitKeyItemName, StationLimits: map[string]int{"AB": 2}}
		_, ok := w.StationLimitFor(item)
		require.False(t, ok)
	})

	t.Run("item name keyed matches full name case-insensitively", func(t *testing.T) {
		w := &Worker{LimitKey: StationLimitKeyItemName, StationLimits: map[string]int{"AB123.ZHR": 1}}
		limit, ok := w.StationLimitFor(item)
		require.True(t, ok)
		require.Equal(t, 1, limit)
	})
}

func TestPassReport_Counts(t *testing.T) {
	r := NewPassReport("p1", time.Now())
	r.Assigned = append(r.Assigned, Assignment{Item: "a.zhr", Worker: "doc"})
	r.Rejected = append(r.Rejected, "b.zhr")
	r.Failed = append(r.Failed, ItemFailure{Item: "c.zhr", Error: "boom"})

	require.NoError(t, r.Validate())
	require.Equal(t, 3, r.Total())
	require.Equal(t, 1, r.Counts()[OutcomeAssigned])
	require.Equal(t, 0, r.Counts()[OutcomeUnassignable])
}
