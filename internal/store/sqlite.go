package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expenses/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded alternative to PostgresStore, intended
// for local development. Same statement contract, same transaction
// semantics for mutating operations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ExpensesForDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	const op = "fetch expenses for date"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_date, category, notes, amount_cents FROM expenses WHERE expense_date = ?`,
		date.String())
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e  core.Expense
			d  string
			ac int64
		)
		if err := rows.Scan(&e.ID, &d, &e.Category, &e.Notes, &ac); err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		parsed, err := core.ParseDate(d)
		if err != nil {
			return nil, &StorageError{Op: op, Err: fmt.Errorf("malformed expense_date %q: %w", d, err)}
		}
		e.Date = parsed
		e.Amount = core.Money{Cents: ac}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	slog.DebugContext(ctx, "Fetched expenses for date", "date", date.String(), "count", len(expenses))
	return expenses, nil
}

func (s *SQLiteStore) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	const op = "insert expense"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &StorageError{Op: op, Err: fmt.Errorf("begin transaction: %w", err)}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (expense_date, category, notes, amount_cents) VALUES (?, ?, ?, ?)`,
		e.Date.String(), e.Category, e.Notes, e.Amount.Cents)
	if err != nil {
		_ = tx.Rollback()
		return 0, &StorageError{Op: op, Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, &StorageError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StorageError{Op: op, Err: fmt.Errorf("commit transaction: %w", err)}
	}

	slog.InfoContext(ctx, "Expense inserted",
		"id", id,
		"date", e.Date.String(),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return id, nil
}

func (s *SQLiteStore) DeleteExpensesForDate(ctx context.Context, date core.Date) (int64, error) {
	const op = "delete expenses for date"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &StorageError{Op: op, Err: fmt.Errorf("begin transaction: %w", err)}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE expense_date = ?`, date.String())
	if err != nil {
		_ = tx.Rollback()
		return 0, &StorageError{Op: op, Err: err}
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, &StorageError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StorageError{Op: op, Err: fmt.Errorf("commit transaction: %w", err)}
	}

	slog.InfoContext(ctx, "Expenses deleted for date", "date", date.String(), "count", deleted)
	return deleted, nil
}

func (s *SQLiteStore) ExpenseSummary(ctx context.Context, start, end core.Date) ([]core.CategoryTotal, error) {
	const op = "fetch expense summary"
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total_cents
		 FROM expenses
		 WHERE expense_date BETWEEN ? AND ?
		 GROUP BY category`,
		start.String(), end.String())
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.Category, &cents); err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		ct.TotalAmount = core.Money{Cents: cents}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	slog.DebugContext(ctx, "Fetched expense summary",
		"start", start.String(), "end", end.String(), "categories", len(totals))
	return totals, nil
}
