// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
)

// Gate blocks domain commands while migrations are outstanding. It only
// reads the ledger; running migrations is the Runner's job.
type Gate struct {
	db     *sql.DB
	target int
}

// NewGate builds a Gate for the given target level, normally
// Registry.MaxLevel() of the registry the binary ships with.
func NewGate(db *sql.DB, target int) *Gate {
	return &Gate{db: db, target: target}
}

// Pending reports whether the ledger is behind the target level. An
// empty ledger is pending, not an error.
func (g *Gate) Pending(ctx context.Context) (bool, error) {
	current, err := CurrentLevel(ctx, g.db)
	if err != nil {
		return false, err
	}
	return current < g.target, nil
}
