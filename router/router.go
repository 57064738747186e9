// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/commoncode/coffeebot/cliparse"
	"github.com/commoncode/coffeebot/handlers"
	"github.com/commoncode/coffeebot/middleware"
	"github.com/commoncode/coffeebot/migrate"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, backups handlers.BackupRunner) *http.ServeMux {
	mux := http.NewServeMux()

	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}

	reg := migrate.DefaultRegistry()
	runner := migrate.NewRunner(db, reg, loc)
	gate := migrate.NewGate(db, reg.MaxLevel())

	coffeeHandler := handlers.NewCoffeeHandler(db, cfg, runner, gate, backups)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// The one Slack webhook. The path is historical; it predates the
	// bot doing anything besides adding coffees.
	mux.HandleFunc("POST /addCoffee", middleware.WithLogging(coffeeHandler.HandleCommand))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("coffeebot"))
	})

	return mux
}
