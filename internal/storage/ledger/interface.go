// internal/storage/ledger/interface.go
package ledger

import (
	"context"
	"time"

	"github.com/quantprim/prism/internal/sim"
)

// Record is one closed trade attributed to a run. The ledger is append-only:
// records are never updated or removed once written.
type Record struct {
	ID       string
	RunID    string
	Symbol   string
	Strategy string
	Trade    sim.Trade
}

// Store defines the interface for trade ledger persistence.
type Store interface {
	// Append persists a trade record and assigns an ID when empty.
	Append(ctx context.Context, rec Record) error

	// List retrieves records matching the filter, ordered by exit time.
	List(ctx context.Context, filter ListFilter) ([]Record, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// Close releases the backing resources.
	Close() error
}

// ListFilter defines criteria for listing trade records.
type ListFilter struct {
	RunID    string
	Symbol   string
	Strategy string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
