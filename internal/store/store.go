// Package store implements data access for the expenses table.
//
// Two stores exist: PostgresStore dials a fresh connection for every
// operation (no pooling), SQLiteStore keeps an embedded database file.
// Both execute exactly one parameterized statement per operation,
// commit mutating statements or roll them back on failure, and release
// their resources on every exit path.
package store

import (
	"context"

	"expenses/internal/core"
)

// Store is the data access contract consumed by the HTTP layer.
type Store interface {
	// ExpensesForDate returns all expense rows for the given date.
	// An empty result is a valid outcome, not an error.
	ExpensesForDate(ctx context.Context, date core.Date) ([]core.Expense, error)

	// InsertExpense inserts one row and returns its server-generated id.
	// The insert is its own transaction.
	InsertExpense(ctx context.Context, e core.Expense) (int64, error)

	// DeleteExpensesForDate removes all rows for the given date and
	// returns the number of rows removed (0 for an already-empty date).
	DeleteExpensesForDate(ctx context.Context, date core.Date) (int64, error)

	// ExpenseSummary returns per-category totals within the inclusive
	// date range. Categories with no rows in range are omitted.
	ExpenseSummary(ctx context.Context, start, end core.Date) ([]core.CategoryTotal, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// StorageError wraps a driver-level failure. The operation name is safe
// to log; Err carries the underlying driver error and must not leak to
// API callers.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
