// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for coffeebot.

# Route Registration

NewRouter creates a configured http.ServeMux:

	mux := router.NewRouter(db, cfg, backups)

# Endpoints

Health:

	GET /health

The Slack webhook (requires ?key=):

	POST /addCoffee - every /coffee slash command arrives here

# Handler Initialization

The router builds the migration runner and gate from the built-in step
registry and injects them, together with the database connection,
configuration, and backup service, into the command handler.
*/
package router
