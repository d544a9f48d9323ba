// Package feed fetches historical bars from external market data providers.
// Providers return raw bars in exchange order; validation and ordering checks
// belong to the series loader, not the transport.
package feed

import (
	"context"
	"time"

	"github.com/quantprim/prism/internal/core"
)

// Provider defines the interface for market data providers.
type Provider interface {
	Name() string
	FetchBars(ctx context.Context, symbol string, interval core.Interval, start, end time.Time) ([]core.Bar, error)
}
