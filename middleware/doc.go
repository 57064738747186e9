// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /addCoffee", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms),
correlated with a generated request id.

# Slack Helpers

Write Slack response documents:

	middleware.SlackResponse(w, models.Ephemeral("done"))

Slack renders whatever 200 body it receives, so errors meant for the
user are also delivered with status 200; JSONResponse is available for
the rare non-Slack body (e.g. the auth-failure {"result":"nope"}).

Parse slash-command payloads (form-encoded):

	cmd, err := middleware.ParseSlashCommand(r)

Requires command, user_id and team_id to be present.
*/
package middleware
