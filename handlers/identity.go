// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/commoncode/coffeebot/models"
)

// teamIdentity is the resolved database identity of the workspace a
// command came from.
type teamIdentity struct {
	ID    int64
	Label sql.NullString
}

// userIdentity is the resolved database identity of the caller.
type userIdentity struct {
	ID             int64
	AbstractUserID int64
	IsAdmin        bool
}

// getOrCreateTeam resolves the Slack team_id to a team row, creating
// one on first contact. The insert-or-select keeps a concurrent first
// contact from erroring; both callers end up with the same row.
func (h *CoffeeHandler) getOrCreateTeam(ctx context.Context, cmd models.SlashCommand) (teamIdentity, error) {
	var team teamIdentity
	err := h.db.QueryRowContext(ctx, `
		WITH insert_attempt AS (
			INSERT INTO team (created_at, team_id, team_domain)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id) DO NOTHING
			RETURNING id, label
		)
		SELECT id, label FROM insert_attempt
		UNION
		SELECT id, label FROM team WHERE team_id = $2
	`, time.Now().In(h.loc), cmd.TeamID, cmd.TeamDomain).Scan(&team.ID, &team.Label)
	if err != nil {
		return teamIdentity{}, fmt.Errorf("failed to get or create team %s: %w", cmd.TeamID, err)
	}
	return team, nil
}

// getOrCreateUser resolves the Slack user to an app_user row, creating
// both it and a fresh abstract_user on first contact. If the caller's
// Slack display name has changed since last time, the stored name is
// refreshed.
func (h *CoffeeHandler) getOrCreateUser(ctx context.Context, cmd models.SlashCommand, teamID int64) (userIdentity, error) {
	var user userIdentity
	var storedName string
	err := h.db.QueryRowContext(ctx, `
		SELECT id, abstract_user_id, is_admin, user_name
		FROM app_user
		WHERE user_id = $1 AND team_id = $2
	`, cmd.UserID, teamID).Scan(&user.ID, &user.AbstractUserID, &user.IsAdmin, &storedName)

	if err == nil {
		if storedName != cmd.UserName {
			_, err := h.db.ExecContext(ctx,
				"UPDATE app_user SET user_name = $2 WHERE id = $1",
				user.ID, cmd.UserName,
			)
			if err != nil {
				slog.Error("failed to refresh user name", "db_user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}
	if err != sql.ErrNoRows {
		return userIdentity{}, fmt.Errorf("failed to look up user %s: %w", cmd.UserID, err)
	}

	// First contact. The abstract user and user row are created
	// together; the insert-or-select on app_user absorbs a concurrent
	// first contact, at the cost of an orphan abstract_user row for
	// the loser. Orphans are harmless.
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return userIdentity{}, fmt.Errorf("failed to begin user creation: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().In(h.loc)

	var abstractUserID int64
	err = tx.QueryRowContext(ctx,
		"INSERT INTO abstract_user (created_at) VALUES ($1) RETURNING id",
		now,
	).Scan(&abstractUserID)
	if err != nil {
		return userIdentity{}, fmt.Errorf("failed to create abstract user: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		WITH insert_attempt AS (
			INSERT INTO app_user (created_at, user_id, user_name, abstract_user_id, team_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (team_id, user_id) DO NOTHING
			RETURNING id, abstract_user_id, is_admin
		)
		SELECT id, abstract_user_id, is_admin FROM insert_attempt
		UNION
		SELECT id, abstract_user_id, is_admin
		FROM app_user
		WHERE user_id = $2 AND team_id = $5
	`, now, cmd.UserID, cmd.UserName, abstractUserID, teamID).Scan(
		&user.ID, &user.AbstractUserID, &user.IsAdmin,
	)
	if err != nil {
		return userIdentity{}, fmt.Errorf("failed to create user %s: %w", cmd.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return userIdentity{}, fmt.Errorf("failed to commit user creation: %w", err)
	}

	slog.Info("user created", "db_user_id", user.ID, "user_id", cmd.UserID, "user_name", cmd.UserName, "db_team_id", teamID)
	return user, nil
}
