package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenses/internal/core"

	"github.com/jackc/pgx/v5"
)

// PostgresStore reaches the relational database over the network. It
// holds no pool: every operation dials its own connection and closes it
// before returning.
type PostgresStore struct {
	connString string
}

// NewPostgresStore verifies the database is reachable, runs schema
// migrations, and returns a store bound to the given connection string.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	s := &PostgresStore{connString: connString}

	if err := s.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runPostgresMigrations(connString); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx)
}

// Close is a no-op: connections never outlive a single operation.
func (s *PostgresStore) Close() error {
	return nil
}

// withConn dials a connection, runs fn, and always closes the
// connection again. Any failure comes back as a *StorageError.
func (s *PostgresStore) withConn(ctx context.Context, op string, fn func(conn *pgx.Conn) error) error {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	defer conn.Close(ctx)

	if err := fn(conn); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

// withTx is withConn for mutating statements: fn runs inside a
// transaction that is committed on success and rolled back on failure.
func (s *PostgresStore) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	return s.withConn(ctx, op, func(conn *pgx.Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.WarnContext(ctx, "Transaction rollback failed", "operation", op, "error", rbErr)
			}
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ExpensesForDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	var expenses []core.Expense
	err := s.withConn(ctx, "fetch expenses for date", func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT id, expense_date, category, notes, amount_cents FROM expenses WHERE expense_date = $1`,
			date.Time)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e  core.Expense
				d  time.Time
				ac int64
			)
			if err := rows.Scan(&e.ID, &d, &e.Category, &e.Notes, &ac); err != nil {
				return err
			}
			e.Date = core.NewDate(d.Year(), int(d.Month()), d.Day())
			e.Amount = core.Money{Cents: ac}
			expenses = append(expenses, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Fetched expenses for date", "date", date.String(), "count", len(expenses))
	return expenses, nil
}

func (s *PostgresStore) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	var id int64
	err := s.withTx(ctx, "insert expense", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO expenses (expense_date, category, notes, amount_cents) VALUES ($1, $2, $3, $4) RETURNING id`,
			e.Date.Time, e.Category, e.Notes, e.Amount.Cents).Scan(&id)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expense inserted",
		"id", id,
		"date", e.Date.String(),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return id, nil
}

func (s *PostgresStore) DeleteExpensesForDate(ctx context.Context, date core.Date) (int64, error) {
	var deleted int64
	err := s.withTx(ctx, "delete expenses for date", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM expenses WHERE expense_date = $1`, date.Time)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expenses deleted for date", "date", date.String(), "count", deleted)
	return deleted, nil
}

func (s *PostgresStore) ExpenseSummary(ctx context.Context, start, end core.Date) ([]core.CategoryTotal, error) {
	var totals []core.CategoryTotal
	err := s.withConn(ctx, "fetch expense summary", func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT category, SUM(amount_cents) AS total_cents
			 FROM expenses
			 WHERE expense_date BETWEEN $1 AND $2
			 GROUP BY category`,
			start.Time, end.Time)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				ct    core.CategoryTotal
				cents int64
			)
			if err := rows.Scan(&ct.Category, &cents); err != nil {
				return err
			}
			ct.TotalAmount = core.Money{Cents: cents}
			totals = append(totals, ct)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Fetched expense summary",
		"start", start.String(), "end", end.String(), "categories", len(totals))
	return totals, nil
}
