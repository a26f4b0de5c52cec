package dispatch

import (
	"math/rand"

	"holter-distributor/internal/domain"
)

// Candidate is an eligible worker together with its current-day item count.
type Candidate struct {
	Worker *domain.Worker
	Load   int
}

// Selector picks the least loaded candidate, breaking ties uniformly at random.
// It keeps no state between calls besides the random source.
type Selector struct {
	rnd *rand.Rand
}

// NewSelector creates a selector drawing ties from rnd.
func NewSelector(rnd *rand.Rand) *Selector {
	return &Selector{rnd: rnd}
}

// Select returns the chosen candidate. ok is false only for an empty input.
func (s *Selector) Select(candidates []Candidate) (chosen Candidate, ok bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	minLoad := candidates[0].Load
	for _, c := range candidates[1:] {
		if c.Load < minLoad {
			minLoad = c.Load
		}
	}

	least := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Load == minLoad {
			least = append(least, c)
		}
	}
	return least[s.rnd.Intn(len(least))], true
}
