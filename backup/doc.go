// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package backup dumps the drink database to S3.
//
// Backups are JSON-lines documents: one line per row, tagged with the
// table it came from. Incremental backups cover rows created since the
// last successful run and happen nightly; full backups cover
// everything and run on demand. Every attempt, successful or not, is
// recorded in the backups table.
package backup
