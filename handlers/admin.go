// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/commoncode/coffeebot/auth"
	"github.com/commoncode/coffeebot/models"
)

// makeAdmin promotes the caller when they present the configured admin
// key. Failed attempts get the same response as an unknown command, so
// probing for the admin surface learns nothing. Success gets the same
// text with a wink.
func (h *CoffeeHandler) makeAdmin(ctx context.Context, cmd models.SlashCommand, user userIdentity, key string) models.Response {
	if err := auth.VerifyAdminKey(key, h.cfg.AdminKey); err != nil {
		slog.Warn("failed attempt to identify as admin",
			"db_user_id", user.ID, "user_id", cmd.UserID, "user_name", cmd.UserName)
		return models.GenericFailure()
	}

	res, err := h.db.ExecContext(ctx, `
		UPDATE app_user
		SET is_admin = TRUE
		WHERE id = $1 AND is_admin = FALSE
	`, user.ID)
	if err != nil {
		slog.Error("failed to promote admin", "db_user_id", user.ID, "error", err)
		return models.GenericFailure()
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.Warn("admin identification matched no rows, probably already admin",
			"db_user_id", user.ID, "is_admin", user.IsAdmin)
		return models.GenericFailure()
	}

	slog.Info("identified as admin", "db_user_id", user.ID, "user_id", cmd.UserID, "user_name", cmd.UserName)
	resp := models.GenericFailure()
	resp.Text = resp.Text + " ;)"
	return resp
}

// setTeamLabel stores the label used in tally messages in place of
// "workspace members". Admin-only; dispatch enforces that.
func (h *CoffeeHandler) setTeamLabel(ctx context.Context, cmd models.SlashCommand, team teamIdentity, label string) models.Response {
	_, err := h.db.ExecContext(ctx,
		"UPDATE team SET label = $2 WHERE id = $1",
		team.ID, label,
	)
	if err != nil {
		slog.Error("failed to set team label", "db_team_id", team.ID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	slog.Info("team label set", "db_team_id", team.ID, "label", label, "user_name", cmd.UserName)
	return models.InChannel(fmt.Sprintf(
		"The workspace team name has been set to %s by %s", label, cmd.UserName))
}

// myInfo dumps the caller's resolved identity for debugging.
func (h *CoffeeHandler) myInfo(cmd models.SlashCommand, team teamIdentity, user userIdentity) models.Response {
	return models.Ephemeral(fmt.Sprintf(
		"You are on team %d:%s:%s:%s\nuser %d:%d:%s:%s. Your is_admin value is %t",
		team.ID, cmd.TeamID, cmd.TeamDomain, teamLabelOrDefault(team.Label),
		user.AbstractUserID, user.ID, cmd.UserID, cmd.UserName, user.IsAdmin))
}

// runBackup triggers an on-demand backup and relays the result message.
func (h *CoffeeHandler) runBackup(ctx context.Context, full bool) models.Response {
	if h.backups == nil {
		return models.Ephemeral("Backups are not configured")
	}

	var msg string
	var err error
	if full {
		msg, err = h.backups.Full(ctx)
	} else {
		msg, err = h.backups.Incremental(ctx)
	}
	if err != nil {
		slog.Error("on-demand backup failed", "full", full, "error", err)
		return models.Ephemeral(msg)
	}
	return models.Ephemeral(msg)
}
