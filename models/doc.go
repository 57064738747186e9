// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models contains the shared types for coffeebot.

# Slack payloads

SlashCommand is the parsed slash-command form payload. Response is the
JSON document returned to Slack, either plain ephemeral/in-channel text
or a list of Block Kit section blocks:

	middleware.JSONResponse(w, http.StatusOK, models.Ephemeral("hi"))

# Reporting rows

UserTally and UserStats are the per-user aggregates behind the
`/coffee count` leaderboard and `/coffee stats` summaries.

# Limits

MaxCoffeeAdd and MaxCoffeeSubtract bound a single command invocation;
CountDisplaySize is the leaderboard length for `/coffee count`.
*/
package models
