// internal/domain/dispatcher.go
package domain

import "context"

// PassRunner runs a single distribution pass. Implementations are not
// re-entrant: callers must ensure at most one pass is in flight.
type PassRunner interface {
	RunOnePass(ctx context.Context) (*PassReport, error)
}
