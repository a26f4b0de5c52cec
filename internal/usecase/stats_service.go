package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"holter-distributor/internal/config"
	"holter-distributor/internal/domain"
	"holter-distributor/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DoctorMonth holds one doctor folder's item counts for a month.
type DoctorMonth struct {
	Folder string      `json:"folder"`
	Name   string      `json:"name"` // Display name, or the folder when it is not configured
	Days   map[int]int `json:"days"` // day of month -> items
	Total  int         `json:"total"`
}

// MonthlyStats is the per-doctor, per-day item count of one month.
type MonthlyStats struct {
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	DaysInMonth int           `json:"days_in_month"`
	Doctors     []DoctorMonth `json:"doctors"`
	DailyTotals []int         `json:"daily_totals"` // index 0 is day 1
	Total       int           `json:"total"`
}

// DailyEntry is one item filed for a doctor on a day.
type DailyEntry struct {
	Folder string `json:"folder"`
	Name   string `json:"name"`
	Item   string `json:"item"`
}

// StatsService reads assignment statistics straight from the output tree.
// Reads tolerate items appearing or disappearing while a pass runs.
type StatsService struct {
	provider config.Provider
	store    *storage.Store
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewStatsService creates a new StatsService.
func NewStatsService(provider config.Provider, store *storage.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		provider: provider,
		store:    store,
		logger:   logger.With("component", "stats-service"),
		tracer:   otel.Tracer("holter-distributor-stats"),
	}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Monthly counts items per doctor folder per day of the given month.
func (s *StatsService) Monthly(ctx context.Context, year, month int) (*MonthlyStats, error) {
	_, span := s.tracer.Start(ctx, "stats.Monthly", trace.WithAttributes(
		attribute.Int("year", year), attribute.Int("month", month)))
	defer span.End()

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	policy, err := s.provider.Load()
	if err != nil {
		return nil, err
	}
	names := displayNames(policy)

	folders, err := s.store.Subdirs(policy.OutputPath)
	if err != nil {
		return nil, err
	}

	stats := &MonthlyStats{
		Year:        year,
		Month:       month,
		DaysInMonth: daysIn(year, month),
		Doctors:     make([]DoctorMonth, 0, len(folders)),
	}
	stats.DailyTotals = make([]int, stats.DaysInMonth)

	for _, folder := range folders {
		dm := DoctorMonth{Folder: folder, Name: nameFor(names, folder), Days: map[int]int{}}
		dates, err := s.store.Subdirs(filepath.Join(policy.OutputPath, folder))
		if err != nil {
			s.logger.Warn("failed to list doctor folder", "folder", folder, "error", err)
			continue
		}
		for _, dateDir := range dates {
			day, err := domain.ParseDay(dateDir)
			if err != nil {
				s.logger.Debug("skipping non-date folder", "folder", folder, "dir", dateDir)
				continue
			}
			if day.Year() != year || int(day.Month()) != month {
				continue
			}
			items, err := s.store.ItemNames(filepath.Join(policy.OutputPath, folder, dateDir))
			if err != nil {
				s.logger.Warn("failed to list day folder", "folder", folder, "dir", dateDir, "error", err)
				continue
			}
			dm.Days[day.Day()] += len(items)
			dm.Total += len(items)
			stats.DailyTotals[day.Day()-1] += len(items)
			stats.Total += len(items)
		}
		stats.Doctors = append(stats.Doctors, dm)
	}
	return stats, nil
}

// Daily lists the items filed on one day, for one doctor folder or for all
// of them when folder is empty.
func (s *StatsService) Daily(ctx context.Context, year, month, day int, folder string) ([]DailyEntry, error) {
	_, span := s.tracer.Start(ctx, "stats.Daily", trace.WithAttributes(
		attribute.Int("year", year), attribute.Int("month", month), attribute.Int("day", day),
		attribute.String("folder", folder)))
	defer span.End()

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return nil, fmt.Errorf("invalid date %02d.%02d.%d", day, month, year)
	}

	policy, err := s.provider.Load()
	if err != nil {
		return nil, err
	}
	names := displayNames(policy)

	folders := []string{folder}
	if folder == "" {
		if folders, err = s.store.Subdirs(policy.OutputPath); err != nil {
			return nil, err
		}
	} else if !isFolderName(folder) {
		return nil, fmt.Errorf("invalid doctor folder %q", folder)
	}

	entries := []DailyEntry{}
	for _, f := range folders {
		items, err := s.store.ItemNames(filepath.Join(policy.OutputPath, f, domain.FormatDay(date)))
		if err != nil {
			return nil, err
		}
		sort.Strings(items)
		for _, item := range items {
			entries = append(entries, DailyEntry{Folder: f, Name: nameFor(names, f), Item: item})
		}
	}
	return entries, nil
}

// isFolderName reports whether name addresses a single directory directly
// below the output root.
func isFolderName(name string) bool {
	return name != "." && name != ".." && filepath.Base(name) == name
}

func displayNames(policy *config.Policy) map[string]string {
	names := make(map[string]string, len(policy.Doctors))
	for _, d := range policy.Doctors {
		names[d.FolderName] = d.Name
	}
	return names
}

func nameFor(names map[string]string, folder string) string {
	if n, ok := names[folder]; ok {
		return n
	}
	return folder
}
