// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commoncode/coffeebot/models"
)

// dayBounds returns the start of today and the start of tomorrow in
// the handler's zone. "Today" follows the office clock, not UTC.
func (h *CoffeeHandler) dayBounds() (time.Time, time.Time) {
	now := time.Now().In(h.loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	return startOfToday, startOfToday.AddDate(0, 0, 1)
}

// addDrinks records inc coffees for the caller, or removes them when
// inc is negative. Removal only touches today's drinks, newest first,
// so nobody can stomach-pump history.
func (h *CoffeeHandler) addDrinks(ctx context.Context, team teamIdentity, user userIdentity, inc int) models.Response {
	if inc > models.MaxCoffeeAdd {
		return models.Ephemeral(fmt.Sprintf("You can't add more than %d coffees at a time", models.MaxCoffeeAdd))
	}
	if -inc > models.MaxCoffeeSubtract {
		return models.Ephemeral(fmt.Sprintf("You can't remove more than %d coffees at a time", models.MaxCoffeeSubtract))
	}

	startOfToday, startOfTomorrow := h.dayBounds()
	now := time.Now().In(h.loc)

	switch {
	case inc > 0:
		for i := 0; i < inc; i++ {
			_, err := h.db.ExecContext(ctx, `
				INSERT INTO drink (abstract_user_id, user_id, created_at)
				VALUES ($1, $2, $3)
			`, user.AbstractUserID, user.ID, now)
			if err != nil {
				slog.Error("failed to record drink", "abstract_user_id", user.AbstractUserID, "error", err)
				return models.Ephemeral("Something has gone horribly wrong")
			}
		}
	case inc < 0:
		_, err := h.db.ExecContext(ctx, `
			DELETE FROM drink
			WHERE id IN (
				SELECT d.id
				FROM drink d
				WHERE d.abstract_user_id = $1 AND created_at > $2 AND created_at < $3
				ORDER BY d.id DESC
				LIMIT $4
			)
		`, user.AbstractUserID, startOfToday, startOfTomorrow, -inc)
		if err != nil {
			slog.Error("failed to remove drinks", "abstract_user_id", user.AbstractUserID, "error", err)
			return models.Ephemeral("Something has gone horribly wrong")
		}
	}

	var teamCount, userCount int64
	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM app_user u
		INNER JOIN drink d ON d.abstract_user_id = u.abstract_user_id
		WHERE u.team_id = $3 AND d.created_at > $1 AND d.created_at < $2
	`, startOfToday, startOfTomorrow, team.ID).Scan(&teamCount)
	if err != nil {
		slog.Error("failed to count team drinks", "db_team_id", team.ID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	err = h.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM drink
		WHERE abstract_user_id = $1 AND created_at > $2 AND created_at < $3
	`, user.AbstractUserID, startOfToday, startOfTomorrow).Scan(&userCount)
	if err != nil {
		slog.Error("failed to count user drinks", "abstract_user_id", user.AbstractUserID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	slog.Info("drinks updated",
		"abstract_user_id", user.AbstractUserID,
		"increment", inc,
		"user_today", userCount,
		"team_today", teamCount,
	)

	return models.Ephemeral(fmt.Sprintf(
		"That's coffee number %d for you today, and number %d for %s today",
		userCount, teamCount, teamLabelOrDefault(team.Label)))
}
