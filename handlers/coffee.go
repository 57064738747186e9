// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/commoncode/coffeebot/auth"
	"github.com/commoncode/coffeebot/cliparse"
	"github.com/commoncode/coffeebot/middleware"
	"github.com/commoncode/coffeebot/migrate"
	"github.com/commoncode/coffeebot/models"
)

// BackupRunner triggers backups on demand and returns a human-readable
// result message. A nil runner means backups are not configured.
type BackupRunner interface {
	Incremental(ctx context.Context) (string, error)
	Full(ctx context.Context) (string, error)
}

type CoffeeHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	runner  *migrate.Runner
	gate    *migrate.Gate
	backups BackupRunner
	loc     *time.Location
}

func NewCoffeeHandler(db *sql.DB, cfg cliparse.Config, runner *migrate.Runner, gate *migrate.Gate, backups BackupRunner) *CoffeeHandler {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &CoffeeHandler{db: db, cfg: cfg, runner: runner, gate: gate, backups: backups, loc: loc}
}

// HandleCommand handles POST /addCoffee, the single webhook Slack posts
// every `/coffee` invocation to. All subcommands dispatch on the text
// field of the payload.
func (h *CoffeeHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := auth.VerifyRequestKey(r.URL.Query().Get("key"), h.cfg.AuthKey); err != nil {
		slog.Warn("rejected request with bad key", "remote", r.RemoteAddr)
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"result": "nope"})
		return
	}

	cmd, err := middleware.ParseSlashCommand(r)
	if err != nil {
		slog.Error("failed to parse slash command payload", "error", err)
		middleware.SlackResponse(w, models.Ephemeral("Something has gone horribly wrong"))
		return
	}

	h.passthrough(r)

	if cmd.Command != "/coffee" {
		slog.Warn("unexpected slash command", "command", cmd.Command)
		middleware.SlackResponse(w, models.Ephemeral("Something has gone horribly wrong"))
		return
	}

	if cmd.Text == "migrate" {
		middleware.SlackResponse(w, h.runMigrations(ctx, cmd))
		return
	}

	pending, err := h.gate.Pending(ctx)
	if err != nil {
		slog.Error("failed to check migration level", "error", err)
		middleware.SlackResponse(w, models.Ephemeral("Something has gone horribly wrong"))
		return
	}
	if pending {
		middleware.SlackResponse(w, models.Ephemeral("Migrations must be run before continuing"))
		return
	}

	team, err := h.getOrCreateTeam(ctx, cmd)
	if err != nil {
		slog.Error("failed to get or create team", "team_id", cmd.TeamID, "error", err)
		middleware.SlackResponse(w, models.Ephemeral("Something has gone horribly wrong"))
		return
	}

	user, err := h.getOrCreateUser(ctx, cmd, team.ID)
	if err != nil {
		slog.Error("failed to get or create user", "user_id", cmd.UserID, "error", err)
		middleware.SlackResponse(w, models.Ephemeral("Something has gone horribly wrong"))
		return
	}

	middleware.SlackResponse(w, h.dispatch(ctx, cmd, team, user))
}

// dispatch routes a gated, identified command. Unknown text and
// admin-only commands from non-admins both get the generic failure so
// the admin surface stays invisible.
func (h *CoffeeHandler) dispatch(ctx context.Context, cmd models.SlashCommand, team teamIdentity, user userIdentity) models.Response {
	text := cmd.Text

	switch {
	case text == "help":
		return showHelp()
	case text == "about":
		return showAbout(team.Label)
	case text == "link":
		return h.issueLinkCode(ctx, user)
	case strings.HasPrefix(text, "link "):
		return h.redeemLinkCode(ctx, user, strings.TrimPrefix(text, "link "))
	case text == "count":
		return h.showCount(ctx, team, models.CountDisplaySize)
	case text == "count-all":
		return h.showCount(ctx, team, 0)
	case text == "stats":
		return h.showStats(ctx, team)
	case text == "stomach-pump":
		return h.addDrinks(ctx, team, user, -1)
	case text == "":
		return h.addDrinks(ctx, team, user, 1)
	case strings.HasPrefix(text, "auth "):
		return h.makeAdmin(ctx, cmd, user, strings.TrimPrefix(text, "auth "))
	case user.IsAdmin && strings.HasPrefix(text, "teamlabel "):
		return h.setTeamLabel(ctx, cmd, team, strings.TrimPrefix(text, "teamlabel "))
	case user.IsAdmin && text == "myinfo":
		return h.myInfo(cmd, team, user)
	case user.IsAdmin && text == "backup":
		return h.runBackup(ctx, false)
	case user.IsAdmin && text == "backup-all":
		return h.runBackup(ctx, true)
	}

	if n, err := strconv.Atoi(text); err == nil {
		return h.addDrinks(ctx, team, user, n)
	}

	return models.GenericFailure()
}

// runMigrations is deliberately open to any caller: the command isn't
// advertised, and the engine is idempotent and safe under races.
func (h *CoffeeHandler) runMigrations(ctx context.Context, cmd models.SlashCommand) models.Response {
	rc := migrate.RunContext{
		UserID:     cmd.UserID,
		UserName:   cmd.UserName,
		TeamID:     cmd.TeamID,
		TeamDomain: cmd.TeamDomain,
	}

	res, err := h.runner.Run(ctx, rc)
	if err != nil {
		slog.Error("migrations failed to apply", "error", err)
		return models.Ephemeral("Migrations failed to apply")
	}

	if len(res.Applied) == 0 && len(res.Skipped) == 0 {
		return models.Ephemeral(fmt.Sprintf("No migrations pending; already at level %d", res.To))
	}
	return models.Ephemeral("Migrations ran successfully")
}

func showHelp() models.Response {
	return models.Ephemeral(`Ohai, and welcome to coffeebot. Coffeebot counts the coffees consumed by teams because why not.

The most important commands are:

- ` + "`/coffee help`" + ` - You found this already
- ` + "`/coffee`" + ` - add a single coffee
- ` + "`/coffee <number>`" + ` - add multiple coffees, max 5; but try to use /coffee when you get a coffee instead
- ` + "`/coffee stomach-pump`" + ` - subtract a single coffee
- ` + "`/coffee -<number>`" + ` - subtract multiple coffees, max 2; but try not to add coffees you're not drinking
- ` + "`/coffee count`" + ` - show the total number of coffees, and highest 5 coffee consumers
- ` + "`/coffee count-all`" + ` - show the total number of coffees, and _all_ coffee consumers
- ` + "`/coffee stats`" + ` - see summary data from all coffees recorded since the beginning of the bot
- ` + "`/coffee link`" + ` - get a code to link your user between workspaces, so you can log coffees from any of them
- ` + "`/coffee link <link code>`" + ` - use a link code to link your account between workspaces
- ` + "`/coffee about`" + ` - about coffeebot`)
}

func showAbout(teamLabel sql.NullString) models.Response {
	return models.Ephemeral(fmt.Sprintf(
		"CoffeeBot is a helpful slack bot dedicated to capturing the coffee consumption habits of %s.\n"+
			"It was written the night before international coffee day 2020 as a something between "+
			"a joke and an experiment. Somehow, it has continued to be used since then.\n"+
			"It was created based on the idea by Bec (of 2020 Common Code) that it would be cool to know how much coffee "+
			"team members drink. I hope you enjoy it.\n\n   - Simeon",
		teamLabelOrDefault(teamLabel)))
}

// teamLabelOrDefault substitutes a generic plural when the team has no
// configured label.
func teamLabelOrDefault(label sql.NullString) string {
	if label.Valid && label.String != "" {
		return label.String
	}
	return "workspace members"
}
