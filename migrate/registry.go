// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunContext identifies who triggered a migration run. It feeds audit
// logging and the level-2 data transform, which assumes all legacy rows
// belong to the triggering workspace.
type RunContext struct {
	UserID     string
	UserName   string
	TeamID     string
	TeamDomain string

	// Now is stamped by the Runner so every operation in a run shares
	// one timestamp.
	Now time.Time
}

// Operation is one action within a migration step. Operations come in
// two variants, SchemaOp and DataOp, so the engine can apply uniform
// transaction handling regardless of content.
type Operation interface {
	Name() string
	Apply(ctx context.Context, tx *sql.Tx, rc RunContext) error
}

// SchemaOp is an idempotent DDL statement (CREATE ... IF NOT EXISTS).
type SchemaOp struct {
	name string
	ddl  string
}

// Schema builds a schema-definition operation.
func Schema(name, ddl string) SchemaOp {
	return SchemaOp{name: name, ddl: ddl}
}

func (op SchemaOp) Name() string { return op.name }

func (op SchemaOp) Apply(ctx context.Context, tx *sql.Tx, _ RunContext) error {
	_, err := tx.ExecContext(ctx, op.ddl)
	return err
}

// DataOp transforms existing rows. Implementations must be safe to
// re-issue: a rerun after a failed attempt may find rows it already
// produced, and must skip rather than duplicate them.
type DataOp struct {
	name string
	fn   func(ctx context.Context, tx *sql.Tx, rc RunContext) error
}

// Data builds a data-transformation operation.
func Data(name string, fn func(ctx context.Context, tx *sql.Tx, rc RunContext) error) DataOp {
	return DataOp{name: name, fn: fn}
}

func (op DataOp) Name() string { return op.name }

func (op DataOp) Apply(ctx context.Context, tx *sql.Tx, rc RunContext) error {
	return op.fn(ctx, tx, rc)
}

// Step is one versioned unit of schema evolution. Applying it advances
// the ledger from Level-1 to Level in a single transaction.
//
// Shipped steps must never be edited once applied anywhere: re-running
// a changed step against a store that already moved past it would
// corrupt history. Evolution means appending a step with
// Level = previousMax+1.
type Step struct {
	Level int
	Name  string
	Ops   []Operation
}

// Registry holds the complete, gapless chain of steps from level 1 up.
type Registry struct {
	steps []Step
}

// NewRegistry validates that steps form a gapless ascending chain
// starting at level 1.
func NewRegistry(steps ...Step) (*Registry, error) {
	for i, step := range steps {
		want := i + 1
		if step.Level != want {
			return nil, fmt.Errorf("migration steps must be gapless from level 1: step %d has level %d", want, step.Level)
		}
		if len(step.Ops) == 0 {
			return nil, fmt.Errorf("migration step %d (%s) has no operations", step.Level, step.Name)
		}
	}
	return &Registry{steps: steps}, nil
}

// StepsAbove returns all steps with Level > level, ascending.
func (r *Registry) StepsAbove(level int) []Step {
	if level >= len(r.steps) {
		return nil
	}
	if level < 0 {
		level = 0
	}
	return r.steps[level:]
}

// MaxLevel is the target level for the running binary: the level of
// the last registered step, 0 when the registry is empty.
func (r *Registry) MaxLevel() int {
	return len(r.steps)
}
