// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package migrate evolves the coffeebot schema through versioned,
transactional steps.

# Ledger

The migrations table is the sole record of what has been applied:

	id     INT PRIMARY KEY   -- the level
	run_at TIMESTAMPTZ       -- when it committed

Applied levels always form a gapless prefix 1..current. CurrentLevel
returns 0 for an empty ledger. The engine never infers state from
domain tables.

# Steps

A Step advances the schema by exactly one level inside one transaction.
Its operations are either SchemaOp (idempotent DDL) or DataOp (row
transforms that must tolerate re-issue). The built-in chain:

	1  legacy flat schema (coffee, backups)
	2  normalized team/user/drink schema + legacy data copy

Shipped steps are frozen. New schema work appends a step with
Level = previousMax+1; editing an applied step would corrupt stores
that already moved past it.

# Running

	runner := migrate.NewRunner(db, migrate.DefaultRegistry(), loc)
	result, err := runner.Run(ctx, migrate.RunContext{UserID: ...})

Each pending step runs in its own transaction: the ledger level is
re-read inside the transaction (a concurrent run may have advanced it),
the operations execute in order, RecordLevel appends the ledger entry,
and the transaction commits. A failure rolls back only that step and
aborts the run; earlier steps stay committed, so retrying is always
safe. Two concurrent runs race harmlessly: the ledger's primary key
makes exactly one insert per level win, and the loser reports the level
as skipped rather than failing.

# Gating

	gate := migrate.NewGate(db, registry.MaxLevel())
	pending, err := gate.Pending(ctx)

Domain commands are refused while Pending is true. The gate only reads;
it never runs a migration.
*/
package migrate
