// internal/storage/ledger/factory.go
package ledger

import (
	"fmt"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
)

// New creates a ledger store based on configuration.
func New(cfg config.LedgerConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.DSN)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown ledger driver: %s", cfg.Driver))
	}
}
