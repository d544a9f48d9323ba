// internal/storage/ledger/memory.go
package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory trade ledger.
type MemoryStore struct {
	records []Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a record to the ledger.
func (m *MemoryStore) Append(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.records = append(m.records, rec)
	return nil
}

// List returns records matching the filter, ordered by exit time.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Record
	for _, rec := range m.records {
		if matches(rec, filter) {
			result = append(result, rec)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Trade.ExitTime.Before(result[j].Trade.ExitTime)
	})

	// Apply offset and limit
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []Record{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching records.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if matches(rec, filter) {
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the in-memory ledger.
func (m *MemoryStore) Close() error {
	return nil
}

func matches(rec Record, filter ListFilter) bool {
	if filter.RunID != "" && rec.RunID != filter.RunID {
		return false
	}
	if filter.Symbol != "" && rec.Symbol != filter.Symbol {
		return false
	}
	if filter.Strategy != "" && rec.Strategy != filter.Strategy {
		return false
	}
	if !filter.From.IsZero() && rec.Trade.ExitTime.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.Trade.ExitTime.After(filter.To) {
		return false
	}
	return true
}
