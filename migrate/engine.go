// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Result summarizes one migration run.
type Result struct {
	From    int   // ledger level before the run
	To      int   // ledger level after the run
	Applied []int // levels this run committed
	Skipped []int // levels found already applied by a concurrent run
}

// Runner executes pending migration steps in order, one transaction
// per step.
type Runner struct {
	db  *sql.DB
	reg *Registry
	loc *time.Location
	now func() time.Time // swapped in tests
}

// NewRunner builds a Runner. loc attributes run_at timestamps for audit
// display only.
func NewRunner(db *sql.DB, reg *Registry, loc *time.Location) *Runner {
	return &Runner{db: db, reg: reg, loc: loc, now: time.Now}
}

// Run applies all pending steps in ascending level order. The first
// failing step rolls back fully and aborts the run; steps committed
// before it stay committed, so the ledger never holds a half-applied
// level and a retry resumes where the failure left off.
//
// Running with nothing pending is a successful no-op. Racing another
// run is safe: each step re-checks the ledger inside its own
// transaction and skips levels that have already advanced.
func (r *Runner) Run(ctx context.Context, rc RunContext) (Result, error) {
	current, err := CurrentLevel(ctx, r.db)
	if err != nil {
		return Result{}, err
	}

	res := Result{From: current, To: current}

	steps := r.reg.StepsAbove(current)
	if len(steps) == 0 {
		slog.Info("no migrations pending", "level", current)
		return res, nil
	}

	slog.Info("running migrations",
		"from", current,
		"target", r.reg.MaxLevel(),
		"user_id", rc.UserID,
		"user_name", rc.UserName,
		"team_id", rc.TeamID,
		"team_domain", rc.TeamDomain,
	)

	rc.Now = r.now().In(r.loc)

	for _, step := range steps {
		applied, err := r.runStep(ctx, step, rc)
		if err != nil {
			// A concurrent run can make our attempt fail before the
			// ledger insert, e.g. a catalog conflict on DDL both
			// transactions issued. If the ledger has meanwhile
			// advanced past this level, the step was applied
			// elsewhere and the failure is not ours to report.
			if current, lvlErr := CurrentLevel(ctx, r.db); lvlErr == nil && current >= step.Level {
				slog.Warn("migration level won by concurrent run", "level", step.Level)
				res.Skipped = append(res.Skipped, step.Level)
				res.To = step.Level
				continue
			}
			return res, err
		}
		if applied {
			res.Applied = append(res.Applied, step.Level)
		} else {
			res.Skipped = append(res.Skipped, step.Level)
		}
		res.To = step.Level
	}

	slog.Info("all migrations applied", "level", res.To)
	return res, nil
}

// runStep applies one step in its own transaction. It returns
// (false, nil) when the level turns out to be already applied, which a
// concurrent run can cause at two points: before our transaction reads
// the ledger, or between that read and our ledger insert.
func (r *Runner) runStep(ctx context.Context, step Step, rc RunContext) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin migration %d: %w", step.Level, err)
	}
	defer tx.Rollback()

	// Re-validate the precondition against a fresh read inside the
	// transaction; the pending list was computed outside it.
	current, err := CurrentLevel(ctx, tx)
	if err != nil {
		return false, err
	}
	if current >= step.Level {
		slog.Info("migration already applied", "level", step.Level, "name", step.Name)
		return false, nil
	}
	if current != step.Level-1 {
		return false, fmt.Errorf("migration %d requires level %d, ledger at %d", step.Level, step.Level-1, current)
	}

	for _, op := range step.Ops {
		if err := op.Apply(ctx, tx, rc); err != nil {
			return false, fmt.Errorf("migration %d (%s), operation %q: %w", step.Level, step.Name, op.Name(), err)
		}
	}

	if err := RecordLevel(ctx, tx, step.Level, rc.Now); err != nil {
		if errors.Is(err, ErrConflict) {
			// Another run committed this level first. Its transaction
			// carried the same operations, so ours is discarded.
			slog.Warn("migration level won by concurrent run", "level", step.Level)
			return false, nil
		}
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration %d: %w", step.Level, err)
	}

	slog.Info("migration applied", "level", step.Level, "name", step.Name)
	return true, nil
}
