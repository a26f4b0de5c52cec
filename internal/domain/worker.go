// internal/domain/worker.go
package domain

import "strings"

// Unlimited marks a Worker without a daily item limit.
const Unlimited = -1

// StationLimitKey selects how keys of Worker.StationLimits are matched
// against an incoming item.
type StationLimitKey string

const (
	// StationLimitKeyItemName compares limit keys with the full item name.
	StationLimitKeyItemName StationLimitKey = "item_name"
	// StationLimitKeyStation compares limit keys with the item's station code.
	StationLimitKeyStation StationLimitKey = "station"
)

// Worker is a doctor receiving work items. It is rebuilt from configuration
// at the start of every pass and never carries state between passes.
type Worker struct {
	Name          string          `json:"name"`
	FolderName    string          `json:"folder_name"`
	DailyLimit    int             `json:"daily_limit"`
	SkipStations  map[string]bool `json:"skip_stations,omitempty"`
	StationLimits map[string]int  `json:"station_limits,omitempty"` // upper-cased keys
	LimitKey      StationLimitKey `json:"limit_key"`
	IsWorking     bool            `json:"is_working"`
	DaysOff       map[string]bool `json:"days_off,omitempty"` // DD.MM.YYYY
}

// SkipsStation reports whether the worker never accepts items of this station.
func (w *Worker) SkipsStation(code string) bool {
	return w.SkipStations[strings.ToUpper(code)]
}

// IsDayOff reports whether the formatted business day is one of the worker's days off.
func (w *Worker) IsDayOff(day string) bool {
	return w.DaysOff[day]
}

// StationLimitFor returns the per-station limit that applies to item, if any.
func (w *Worker) StationLimitFor(item WorkItem) (int, bool) {
	if len(w.StationLimits) == 0 {
		return 0, false
	}
	key := item.StationCode()
	if w.LimitKey != StationLimitKeyStation {
		key = strings.ToUpper(item.Name)
	}
	limit, ok := w.StationLimits[key]
	return limit, ok
}
