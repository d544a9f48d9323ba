// internal/storage/ledger/sqlite.go
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/sim"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	side        TEXT NOT NULL,
	entry_time  TEXT NOT NULL,
	exit_time   TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price  REAL NOT NULL,
	size        REAL NOT NULL,
	pnl         REAL NOT NULL,
	cost        REAL NOT NULL,
	exit_reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
`

// SQLiteStore is a trade ledger backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and prepares
// the trades table.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.WrapError(core.ErrLedgerFailed, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrLedgerFailed, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append inserts a trade record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, run_id, symbol, strategy, side, entry_time, exit_time,
			entry_price, exit_price, size, pnl, cost, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Symbol, rec.Strategy,
		rec.Trade.Side.String(),
		rec.Trade.EntryTime.UTC().Format(time.RFC3339),
		rec.Trade.ExitTime.UTC().Format(time.RFC3339),
		rec.Trade.EntryPrice, rec.Trade.ExitPrice, rec.Trade.Size,
		rec.Trade.PnL, rec.Trade.Cost, string(rec.Trade.Exit),
	)
	if err != nil {
		return core.WrapError(core.ErrLedgerFailed, err)
	}
	return nil
}

// List retrieves records matching the filter, ordered by exit time.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	where, args := buildWhere(filter)
	query := `SELECT id, run_id, symbol, strategy, side, entry_time, exit_time,
		entry_price, exit_price, size, pnl, cost, exit_reason FROM trades` +
		where + ` ORDER BY exit_time`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapError(core.ErrLedgerFailed, err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		var side, entryTime, exitTime, exitReason string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Symbol, &rec.Strategy, &side,
			&entryTime, &exitTime, &rec.Trade.EntryPrice, &rec.Trade.ExitPrice,
			&rec.Trade.Size, &rec.Trade.PnL, &rec.Trade.Cost, &exitReason); err != nil {
			return nil, core.WrapError(core.ErrLedgerFailed, err)
		}

		if side == "short" {
			rec.Trade.Side = sim.SideShort
		}
		rec.Trade.Exit = sim.ExitReason(exitReason)
		if rec.Trade.EntryTime, err = time.Parse(time.RFC3339, entryTime); err != nil {
			return nil, core.WrapError(core.ErrLedgerFailed, err)
		}
		if rec.Trade.ExitTime, err = time.Parse(time.RFC3339, exitTime); err != nil {
			return nil, core.WrapError(core.ErrLedgerFailed, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrLedgerFailed, err)
	}

	return result, nil
}

// Count returns the number of records matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trades"+where, args...).Scan(&count)
	if err != nil {
		return 0, core.WrapError(core.ErrLedgerFailed, err)
	}
	return count, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Symbol != "" {
		clauses = append(clauses, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Strategy != "" {
		clauses = append(clauses, "strategy = ?")
		args = append(args, filter.Strategy)
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "exit_time >= ?")
		args = append(args, filter.From.UTC().Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "exit_time <= ?")
		args = append(args, filter.To.UTC().Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
