// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the coffeebot server.

Coffeebot is a Slack slash-command bot that counts the coffees a team
drinks. It began as an international-coffee-day joke and has refused to
die since, so now it has migrations.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=postgres://... AUTH_KEY=... go run .

Or with flags:

	go run . -p 3000 -d "postgres://..." -auth-key "..."

On a fresh database, send `/coffee migrate` from Slack to build the
schema; every other command is refused until migrations have run.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - AUTH_KEY (-auth-key): Shared key Slack presents as ?key=

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - TIMEZONE (-tz): IANA zone for day boundaries and schedules
    (default: Australia/Melbourne)
  - ADMIN_KEY (-admin-key): Key for `/coffee auth`; empty disables
  - AWS_BUCKET_NAME, AWS_BACKUP_FOLDER, AWS_REGION, AWS_ACCESS_KEY_ID,
    AWS_SECRET_KEY: S3 backup settings; no bucket disables backups
  - REQUEST_PASSTHROUGH_HOST, REQUEST_PASSTHROUGH_PORT: legacy relay

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: the /coffee command webhook and its subcommands
  - migrate: versioned schema migration engine, ledger, and gate
  - backup: S3 table dumps, on demand and nightly
  - router: route definitions using Go 1.22+ routing
  - middleware: request logging, Slack payload parsing, JSON helpers
  - models: Slack payload and domain types
  - auth: key verification and link-code generation
  - wordlist: the words link codes are built from
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
