package dispatch

import (
	"fmt"

	"holter-distributor/internal/domain"
)

// DedupIndex is the case-insensitive set of item names already present
// anywhere under the output tree. It is built once per pass.
type DedupIndex struct {
	names map[string]struct{}
}

// BuildDedupIndex walks the output tree once.
func BuildDedupIndex(dir Directory, outputRoot string) (*DedupIndex, error) {
	names, err := dir.WalkItemNames(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEnumeration, err)
	}

	idx := &DedupIndex{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		idx.Add(n)
	}
	return idx, nil
}

// Contains reports whether an item with this name (any case) was already handed out.
func (d *DedupIndex) Contains(name string) bool {
	_, ok := d.names[domain.NameKey(name)]
	return ok
}

// Add records a name assigned during the current pass.
func (d *DedupIndex) Add(name string) {
	d.names[domain.NameKey(name)] = struct{}{}
}

// Len returns the number of distinct names in the index.
func (d *DedupIndex) Len() int {
	return len(d.names)
}
