// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/commoncode/coffeebot/models"
)

// WithLogging wraps a handler with request logging. Each request gets a
// generated id so the start and completion lines can be correlated.
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		slog.Info("request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		next(w, r)

		duration := time.Since(start)
		slog.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// SlackResponse writes a Slack response document with status 200. Slack
// displays whatever body it gets, so errors are also delivered as 200s.
func SlackResponse(w http.ResponseWriter, resp models.Response) {
	JSONResponse(w, http.StatusOK, resp)
}

// ParseSlashCommand parses the form-encoded payload Slack posts for a
// slash command invocation.
func ParseSlashCommand(r *http.Request) (models.SlashCommand, error) {
	if err := r.ParseForm(); err != nil {
		return models.SlashCommand{}, err
	}

	cmd := models.SlashCommand{
		Command:    r.PostFormValue("command"),
		Text:       r.PostFormValue("text"),
		UserID:     r.PostFormValue("user_id"),
		UserName:   r.PostFormValue("user_name"),
		TeamID:     r.PostFormValue("team_id"),
		TeamDomain: r.PostFormValue("team_domain"),
	}

	if cmd.Command == "" {
		return models.SlashCommand{}, errors.New("missing command field")
	}
	if cmd.UserID == "" || cmd.TeamID == "" {
		return models.SlashCommand{}, errors.New("missing user_id or team_id field")
	}

	return cmd, nil
}
