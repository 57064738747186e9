// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package handlers implements the /coffee slash-command webhook.
//
// Everything arrives through a single POST endpoint and dispatches on
// the text of the command: logging drinks, tallies and stats, account
// linking between workspaces, admin identification, and on-demand
// backups. The migrate subcommand drives the schema engine, and every
// other command is held back while migrations are pending.
package handlers
