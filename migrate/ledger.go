// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrConflict means a ledger level was recorded by a concurrent
// migration run between our precondition check and our insert.
var ErrConflict = errors.New("migration level already recorded")

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS migrations (
    id INT NOT NULL,
    run_at TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (id)
);`

// Querier is the subset of *sql.DB and *sql.Tx the ledger reads need,
// so the current level can be checked both outside and inside a step's
// transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// EnsureLedger creates the migrations ledger table if missing. This is
// the only DDL issued outside the step registry; everything else waits
// for `/coffee migrate`.
func EnsureLedger(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// CurrentLevel returns the highest committed migration level, or 0 when
// the ledger is empty. Levels start at 1, so 0 always means "nothing
// applied".
func CurrentLevel(ctx context.Context, q Querier) (int, error) {
	var level sql.NullInt64
	err := q.QueryRowContext(ctx, "SELECT MAX(id) FROM migrations").Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration level: %w", err)
	}
	if !level.Valid {
		return 0, nil
	}
	return int(level.Int64), nil
}

// RecordLevel appends a ledger entry inside the transaction that
// performed the step's operations, so the ledger update commits or
// rolls back together with them. A duplicate level surfaces as
// ErrConflict.
func RecordLevel(ctx context.Context, tx *sql.Tx, level int, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO migrations (id, run_at) VALUES ($1, $2)",
		level, at,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("level %d: %w", level, ErrConflict)
		}
		return fmt.Errorf("failed to record migration level %d: %w", level, err)
	}
	return nil
}
