package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction implements backend.TransactionWriter. Only real posted
// transactions land here; virtual occurrences from recurrence expansion are
// never persisted.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	var every, until sql.NullString
	if t.Recurrence != nil {
		every = sql.NullString{String: string(t.Recurrence.Every), Valid: true}
		if !t.Recurrence.Until.IsEmpty() {
			until = sql.NullString{String: t.Recurrence.Until.Key(), Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner, amount_cents, kind, category, date, recurrence_every, recurrence_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Amount.Cents, string(t.Kind), string(t.Category), t.Date.Key(), every, until)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner", t.Owner,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Key())

	return t.ID, nil
}

// DeleteTransaction implements backend.TransactionWriter with a soft delete,
// so posted facts remain auditable.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = datetime('now')
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}

// ListTransactions implements backend.TransactionReader.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, amount_cents, kind, category, date, recurrence_every, recurrence_until
		FROM transactions
		WHERE owner = ? AND deleted_at IS NULL
		ORDER BY date, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t            core.Transaction
			kind, cat    string
			day          string
			every, until sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Owner, &t.Amount.Cents, &kind, &cat, &day, &every, &until); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.Category = core.Category(cat)
		date, err := core.ParseDay(day)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad date %q", t.ID, day)
		}
		t.Date = date
		if every.Valid {
			rec := core.Recurrence{Every: core.RepetitionType(every.String)}
			if until.Valid {
				u, err := core.ParseDay(until.String)
				if err != nil {
					return nil, fmt.Errorf("transaction %s: bad until %q", t.ID, until.String)
				}
				rec.Until = u
			}
			t.Recurrence = &rec
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetLimits implements backend.LimitsReader. Owners without configured caps
// get a nil map.
func (r *SQLiteRepository) GetLimits(ctx context.Context, owner string) (core.Limits, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, limit_cents FROM limits WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("query limits: %w", err)
	}
	defer rows.Close()

	var limits core.Limits
	for rows.Next() {
		var (
			cat   string
			cents int64
		)
		if err := rows.Scan(&cat, &cents); err != nil {
			return nil, fmt.Errorf("scan limit: %w", err)
		}
		if limits == nil {
			limits = make(core.Limits)
		}
		limits[core.Category(cat)] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate limits: %w", err)
	}
	return limits, nil
}

// SetLimits replaces one owner's caps wholesale, matching how the limits form
// is submitted.
func (r *SQLiteRepository) SetLimits(ctx context.Context, owner string, limits core.Limits) error {
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("validate limits: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin limits update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM limits WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear limits: %w", err)
	}
	for category, amount := range limits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO limits (owner, category, limit_cents) VALUES (?, ?, ?)`,
			owner, string(category), amount.Cents); err != nil {
			return fmt.Errorf("insert limit %s: %w", category, err)
		}
	}

	return tx.Commit()
}

// ListOwners implements backend.OwnerLister.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner FROM transactions WHERE deleted_at IS NULL
		UNION SELECT owner FROM limits
		ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return out, nil
}

// WasAlerted reports whether a violation alert already went out for the
// given owner, category and period (a month key).
func (r *SQLiteRepository) WasAlerted(ctx context.Context, owner string, category core.Category, period string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM limit_alerts
		WHERE owner = ? AND category = ? AND period = ?`,
		owner, string(category), period).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query alert ledger: %w", err)
	}
	return count > 0, nil
}

// MarkAlerted records that a violation alert was published, so the same
// violation is not re-alerted within its period.
func (r *SQLiteRepository) MarkAlerted(ctx context.Context, owner string, category core.Category, period string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO limit_alerts (owner, category, period) VALUES (?, ?, ?)`,
		owner, string(category), period)
	if err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}
	return nil
}
