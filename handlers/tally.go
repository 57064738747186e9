// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/commoncode/coffeebot/models"
)

// showCount reports today's team total and the per-user tally, best
// consumers first. limit caps the listed users; 0 lists everyone.
func (h *CoffeeHandler) showCount(ctx context.Context, team teamIdentity, limit int) models.Response {
	startOfToday, startOfTomorrow := h.dayBounds()

	var teamCount int64
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

	rows, err := h.db.QueryContext(ctx, `
		SELECT u.user_name, COUNT(*) AS drink_count
		FROM app_user u
		INNER JOIN drink d ON d.abstract_user_id = u.abstract_user_id
		WHERE d.created_at > $1 AND d.created_at < $2 AND u.team_id = $3
		GROUP BY u.user_name
		ORDER BY drink_count DESC
	`, startOfToday, startOfTomorrow, team.ID)
	if err != nil {
		slog.Error("failed to tally drinks", "db_team_id", team.ID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}
	defer rows.Close()

	var tallies []models.UserTally
	for rows.Next() {
		var t models.UserTally
		if err := rows.Scan(&t.UserName, &t.DrinkCount); err != nil {
			slog.Error("failed to scan tally row", "error", err)
			return models.Ephemeral("Something has gone horribly wrong")
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed reading tally rows", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	if limit > 0 && len(tallies) > limit {
		tallies = tallies[:limit]
	}

	blocks := []models.Block{
		models.SectionBlock(fmt.Sprintf(
			"*Today*, %s have consumed %d coffees",
			teamLabelOrDefault(team.Label), teamCount)),
	}

	var lines []string
	for _, t := range tallies {
		lines = append(lines, fmt.Sprintf("- _%s_ has consumed %d coffees", t.UserName, t.DrinkCount))
	}
	if len(lines) > 0 {
		blocks = append(blocks, models.SectionBlock(strings.Join(lines, "\n")))
	}

	return models.BlockResponse(blocks)
}

// showStats reports the all-time team total and each user's per-day
// average. Days with no drinks don't count against the average; a day
// only "reports" when something was logged on it.
func (h *CoffeeHandler) showStats(ctx context.Context, team teamIdentity) models.Response {
	var total int64
	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM drink d
		INNER JOIN app_user u ON u.abstract_user_id = d.abstract_user_id
		WHERE u.team_id = $1
	`, team.ID).Scan(&total)
	if err != nil {
		slog.Error("failed to count all drinks", "db_team_id", team.ID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT
			user_name,
			COUNT(coffees_on_day) AS reporting_days,
			SUM(coffees_on_day) AS total_coffees,
			AVG(coffees_on_day) AS avg_coffees_per_day
		FROM (
			SELECT u.user_name, COUNT(*) AS coffees_on_day
			FROM drink d
			INNER JOIN app_user u ON u.abstract_user_id = d.abstract_user_id
			WHERE u.team_id = $1
			GROUP BY u.user_name, date(d.created_at AT TIME ZONE $2)
		) AS coffees_per_day
		GROUP BY user_name
		ORDER BY avg_coffees_per_day DESC
	`, team.ID, h.loc.String())
	if err != nil {
		slog.Error("failed to compute drink stats", "db_team_id", team.ID, "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var s models.UserStats
		if err := rows.Scan(&s.UserName, &s.ReportingDays, &s.TotalCoffees, &s.AvgPerDay); err != nil {
			slog.Error("failed to scan stats row", "error", err)
			return models.Ephemeral("Something has gone horribly wrong")
		}
		lines = append(lines, fmt.Sprintf(
			"- _%s_ has averaged %.1f coffees per day across %d days, for a total of %d coffees",
			s.UserName, s.AvgPerDay, s.ReportingDays, s.TotalCoffees))
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed reading stats rows", "error", err)
		return models.Ephemeral("Something has gone horribly wrong")
	}

	blocks := []models.Block{
		models.SectionBlock(fmt.Sprintf(
			"*Since CoffeeBot began it's glorious existence*, %s have consumed %d coffees",
			teamLabelOrDefault(team.Label), total)),
	}
	if len(lines) > 0 {
		blocks = append(blocks, models.SectionBlock(strings.Join(lines, "\n")))
	}

	return models.BlockResponse(blocks)
}
