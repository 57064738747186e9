// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/commoncode/coffeebot/auth"
	"github.com/commoncode/coffeebot/models"
)

// linkCodeMaxAge is how long an issued link code stays redeemable.
const linkCodeMaxAge = 24 * time.Hour

// issueLinkCode mints a link code for the caller's abstract user.
// Each abstract user holds at most one live code; asking again
// replaces the previous one.
func (h *CoffeeHandler) issueLinkCode(ctx context.Context, user userIdentity) models.Response {
	words, err := auth.GenerateLinkCode()
	if err != nil {
		slog.Error("failed to generate link code", "abstract_user_id", user.AbstractUserID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO link_words (abstract_user_id, words, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (abstract_user_id) DO UPDATE SET words = $2, created_at = $3
	`, user.AbstractUserID, words, time.Now().In(h.loc))
	if err != nil {
		slog.Error("failed to store link code", "abstract_user_id", user.AbstractUserID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	slog.Info("link code issued", "abstract_user_id", user.AbstractUserID)
	return models.Ephemeral(fmt.Sprintf(
		"Your link code is %s. To link another workspace enter /coffee link %s", words, words))
}

// redeemLinkCode merges the caller's identity into the code owner's
// abstract user: the caller's drinks and per-workspace user rows all
// repoint at the owner, so tallies follow the person across
// workspaces. The code is consumed whether or not it was valid, and
// the whole merge happens in one transaction so racing redeemers
// can't split an identity.
func (h *CoffeeHandler) redeemLinkCode(ctx context.Context, user userIdentity, words string) models.Response {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin link transaction", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}
	defer tx.Rollback()

	cutoff := time.Now().In(h.loc).Add(-linkCodeMaxAge)

	var ownerAbstractUserID int64
	err = tx.QueryRowContext(ctx, `
		SELECT abstract_user_id
		FROM link_words
		WHERE words = $1 AND created_at > $2
	`, words, cutoff).Scan(&ownerAbstractUserID)

	found := err == nil
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to look up link code", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	// Consume the code regardless; at this point it is spent, stale,
	// or was never real.
	if _, err := tx.ExecContext(ctx, "DELETE FROM link_words WHERE words = $1", words); err != nil {
		slog.Error("failed to delete link code", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	if !found {
		if err := tx.Commit(); err != nil {
			slog.Error("failed to commit link code cleanup", "error", err)
		}
		return models.Ephemeral(fmt.Sprintf(
			"The link code %s could not be found or is too old. Use /coffee link to get a new link code", words))
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE drink SET abstract_user_id = $2 WHERE abstract_user_id = $1",
		user.AbstractUserID, ownerAbstractUserID,
	); err != nil {
		slog.Error("failed to repoint drinks", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE app_user SET abstract_user_id = $2 WHERE abstract_user_id = $1",
		user.AbstractUserID, ownerAbstractUserID,
	); err != nil {
		slog.Error("failed to repoint users", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit account link", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	slog.Info("accounts linked",
		"from_abstract_user_id", user.AbstractUserID,
		"to_abstract_user_id", ownerAbstractUserID,
	)
	return models.Ephemeral("Your slack user has been linked successfully")
}
