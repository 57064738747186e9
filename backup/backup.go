// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// backupTables lists the tables included in every backup, in dump
// order. The legacy coffee table is not included; its contents were
// copied into drink during migration.
var backupTables = []string{"abstract_user", "team", "app_user", "drink"}

// Service dumps the normalized tables to an uploader as JSON lines and
// records every attempt in the backups audit table.
type Service struct {
	db     *sql.DB
	up     Uploader
	prefix string
	loc    *time.Location
	now    func() time.Time // swapped in tests
}

func NewService(db *sql.DB, up Uploader, prefix string, loc *time.Location) *Service {
	return &Service{db: db, up: up, prefix: prefix, loc: loc, now: time.Now}
}

// Incremental backs up rows created since the last successful backup.
// The first ever run backs up everything.
func (s *Service) Incremental(ctx context.Context) (string, error) {
	slog.Info("commencing incremental backup")

	cutoff, err := s.lastBackupTime(ctx)
	if err != nil {
		return "Incremental backup error", err
	}

	return s.run(ctx, &cutoff, "incremental")
}

// Full backs up every row regardless of backup history.
func (s *Service) Full(ctx context.Context) (string, error) {
	slog.Info("commencing full backup")
	return s.run(ctx, nil, "full")
}

// run collects rows, uploads one JSON-lines document, and records the
// attempt. The returned message is always fit to show a human, error
// or not.
func (s *Service) run(ctx context.Context, cutoff *time.Time, kind string) (string, error) {
	now := s.now().In(s.loc)
	label := strings.ToUpper(kind[:1]) + kind[1:]

	var lines []string
	for _, table := range backupTables {
		tableLines, err := s.dumpTable(ctx, table, cutoff)
		if err != nil {
			s.record(ctx, now, false, err.Error())
			msg := fmt.Sprintf("%s backup error: %v", label, err)
			slog.Error("backup failed", "kind", kind, "table", table, "error", err)
			return msg, err
		}
		lines = append(lines, tableLines...)
	}

	body := []byte(strings.Join(lines, "\n"))
	key := fmt.Sprintf("%s/%s.v2.rows.%s.json", s.prefix, now.Format(time.RFC3339), kind)

	if err := s.up.Upload(ctx, key, body); err != nil {
		s.record(ctx, now, false, err.Error())
		msg := fmt.Sprintf("%s backup error: %v", label, err)
		slog.Error("backup upload failed", "kind", kind, "key", key, "error", err)
		return msg, err
	}

	s.record(ctx, now, true, "")
	msg := fmt.Sprintf("%s rows (%s) backed up. Filename: %s.",
		humanize.Comma(int64(len(lines))), humanize.Bytes(uint64(len(body))), key)
	slog.Info("backup complete", "kind", kind, "rows", len(lines), "key", key)
	return msg, nil
}

// lastBackupTime returns the backup_until of the most recent
// successful backup, or the zero time when none exists.
func (s *Service) lastBackupTime(ctx context.Context) (time.Time, error) {
	var until time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT backup_until FROM backups
		WHERE successful = TRUE
		ORDER BY backup_until DESC
		LIMIT 1
	`).Scan(&until)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to find last backup: %w", err)
	}
	return until, nil
}

// dumpTable serializes the table's rows as JSON lines tagged with the
// table name. A nil cutoff dumps everything.
func (s *Service) dumpTable(ctx context.Context, table string, cutoff *time.Time) ([]string, error) {
	// Table names come from the fixed list above, never from input.
	query := "SELECT * FROM " + table
	args := []interface{}{}
	if cutoff != nil {
		query += " WHERE created_at > $1"
		args = append(args, *cutoff)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}

	var lines []string
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		doc := map[string]interface{}{"tableName": table}
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				doc[col] = string(v)
			default:
				doc[col] = v
			}
		}

		line, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s row: %w", table, err)
		}
		lines = append(lines, string(line))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading %s rows: %w", table, err)
	}

	return lines, nil
}

// record appends a backups audit row. Audit failures are logged but
// never override the backup outcome.
func (s *Service) record(ctx context.Context, at time.Time, successful bool, message string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backups (created_at, backup_until, successful, message)
		VALUES ($1, $2, $3, $4)
	`, at, at, successful, message)
	if err != nil {
		slog.Error("failed to record backup attempt", "error", err)
	}
}
