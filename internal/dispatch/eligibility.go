// internal/dispatch/eligibility.go
package dispatch

import (
	"log/slog"

	"holter-distributor/internal/domain"
)

// Veto names the rule that made a worker ineligible for an item.
type Veto string

const (
	VetoNone             Veto = ""
	VetoNotWorking       Veto = "not working"
	VetoDayOff           Veto = "day off"
	VetoSkipStation      Veto = "station skipped"
	VetoDailyLimit       Veto = "daily limit reached"
	VetoStationLimit     Veto = "station limit reached"
	VetoFolderUnreadable Veto = "folder unreadable"
)

// Evaluate applies the eligibility rules in order and returns the first veto,
// or VetoNone when the worker may take the item. day is the formatted business
// day; today holds the names already in the worker's folder for that day.
func Evaluate(w *domain.Worker, item domain.WorkItem, day string, today []string) Veto {
	if v := checkFlags(w, item, day); v != VetoNone {
		return v
	}
	return checkLoad(w, item, today)
}

// checkFlags runs the rules that need no directory scan.
func checkFlags(w *domain.Worker, item domain.WorkItem, day string) Veto {
	if !w.IsWorking {
		return VetoNotWorking
	}
	if w.IsDayOff(day) {
		return VetoDayOff
	}
	if w.SkipsStation(item.StationCode()) {
		return VetoSkipStation
	}
	return VetoNone
}

func checkLoad(w *domain.Worker, item domain.WorkItem, today []string) Veto {
	if w.DailyLimit != domain.Unlimited && len(today) >= w.DailyLimit {
		return VetoDailyLimit
	}

	if limit, ok := w.StationLimitFor(item); ok {
		station := item.StationCode()
		count := 0
		for _, name := range today {
			if domain.StationCode(name) == station {
				count++
			}
		}
		if count >= limit {
			return VetoStationLimit
		}
	}
	return VetoNone
}

// Evaluator checks workers against the filesystem state of one business day.
// The worker's folder is scanned on every call so moves made by anyone else
// are seen immediately.
type Evaluator struct {
	dir    Directory
	roster *Roster
	day    string
	logger *slog.Logger
}

// NewEvaluator creates an evaluator for the formatted business day.
func NewEvaluator(dir Directory, roster *Roster, day string, logger *slog.Logger) *Evaluator {
	return &Evaluator{dir: dir, roster: roster, day: day, logger: logger}
}

// Eligible reports whether w may take item, and w's current item count for
// the day when it may. A folder that cannot be read makes the worker
// ineligible for this item.
func (e *Evaluator) Eligible(w *domain.Worker, item domain.WorkItem) (bool, int) {
	v, load := e.evaluate(w, item)
	if v != VetoNone {
		e.logger.Debug("worker vetoed", "doctor", w.Name, "item", item.Name, "reason", string(v))
		return false, 0
	}
	return true, load
}

func (e *Evaluator) evaluate(w *domain.Worker, item domain.WorkItem) (Veto, int) {
	if v := checkFlags(w, item, e.day); v != VetoNone {
		return v, 0
	}

	today, err := e.dir.ItemNames(e.roster.Folder(w, e.day))
	if err != nil {
		e.logger.Warn("failed to scan doctor folder", "doctor", w.Name, "error", err)
		return VetoFolderUnreadable, 0
	}
	return checkLoad(w, item, today), len(today)
}

// Candidates returns the eligible workers for item with their current load,
// in roster order.
func (e *Evaluator) Candidates(item domain.WorkItem) []Candidate {
	var out []Candidate
	for _, w := range e.roster.Workers() {
		if ok, load := e.Eligible(w, item); ok {
			out = append(out, Candidate{Worker: w, Load: load})
		}
	}
	return out
}
