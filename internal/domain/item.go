// internal/domain/item.go
package domain

import (
	"path/filepath"
	"strings"
)

// WorkItemExt is the only extension recognised as a pending work item.
// Matching is case-insensitive.
const WorkItemExt = ".zhr"

// WorkItem is one inbound device output file waiting to be assigned.
type WorkItem struct {
	Name string `json:"name"` // Base name as found on disk
	Path string `json:"path"` // Absolute source path at enumeration time
}

// NewWorkItem builds a WorkItem from a full source path.
func NewWorkItem(path string) WorkItem {
	return WorkItem{Name: filepath.Base(path), Path: path}
}

// StationCode returns the upper-cased first two characters of the item name.
func (w WorkItem) StationCode() string {
	return StationCode(w.Name)
}

// StationCode returns the station code of an item name. Names shorter than two
// characters yield the whole (upper-cased) name.
func StationCode(name string) string {
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// IsWorkItemName reports whether a file name carries the work item extension.
func IsWorkItemName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), WorkItemExt)
}

// NameKey is the case-folded form used when comparing item names for duplicates.
func NameKey(name string) string {
	return strings.ToLower(name)
}
