// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "github.com/lib/pq"

	"github.com/commoncode/coffeebot/migrate"
	"github.com/commoncode/coffeebot/models"
	"github.com/commoncode/coffeebot/testutil"
)

// newTestHandler builds a CoffeeHandler against the test database with
// the standard test config and no backup service.
func newTestHandler(db *sql.DB) *CoffeeHandler {
	cfg := testutil.GetTestConfig()
	reg := migrate.DefaultRegistry()
	loc, _ := cfg.Location()
	runner := migrate.NewRunner(db, reg, loc)
	gate := migrate.NewGate(db, reg.MaxLevel())
	return NewCoffeeHandler(db, cfg, runner, gate, nil)
}

// serveSlash runs `/coffee <text>` through the handler as the given
// user and returns the decoded Slack response.
func serveSlash(t *testing.T, h *CoffeeHandler, text, userID, userName string) models.Response {
	t.Helper()

	req := testutil.SlashRequest(testutil.GetTestConfig(), text, userID, userName, "T456", "commoncode")
	w := httptest.NewRecorder()

	h.HandleCommand(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.Response
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestRejectsMissingKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	form := url.Values{}
	form.Set("command", "/coffee")
	form.Set("user_id", "U123")
	form.Set("team_id", "T456")

	req := httptest.NewRequest("POST", "/addCoffee", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleCommand(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp map[string]string
	testutil.AssertJSON(t, w, &resp)
	if resp["result"] != "nope" {
		t.Errorf("Expected nope response, got %v", resp)
	}
}

func TestRejectsWrongKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	req := httptest.NewRequest("POST", "/addCoffee?key=wrong", strings.NewReader("command=/coffee&user_id=U123&team_id=T456"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleCommand(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp map[string]string
	testutil.AssertJSON(t, w, &resp)
	if resp["result"] != "nope" {
		t.Errorf("Expected nope response, got %v", resp)
	}
}

func TestRejectsWrongCommand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	cfg := testutil.GetTestConfig()
	form := url.Values{}
	form.Set("command", "/tea")
	form.Set("user_id", "U123")
	form.Set("team_id", "T456")

	req := httptest.NewRequest("POST", "/addCoffee?key="+cfg.AuthKey, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleCommand(w, req)

	var resp models.Response
	testutil.AssertJSON(t, w, &resp)
	if resp.Text != "Something has gone horribly wrong" {
		t.Errorf("Expected horribly wrong response, got %q", resp.Text)
	}
}

func TestGateBlocksCommandsUntilMigrated(t *testing.T) {
	db := testutil.SetupBareTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "", "U123", "simeon")
	if resp.Text != "Migrations must be run before continuing" {
		t.Fatalf("Expected gate message, got %q", resp.Text)
	}

	resp = serveSlash(t, h, "migrate", "U123", "simeon")
	if resp.Text != "Migrations ran successfully" {
		t.Fatalf("Expected migration success, got %q", resp.Text)
	}

	resp = serveSlash(t, h, "", "U123", "simeon")
	if !strings.Contains(resp.Text, "That's coffee number 1") {
		t.Errorf("Expected a coffee to be logged after migrating, got %q", resp.Text)
	}
}

func TestMigrateWhenNothingPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "migrate", "U123", "simeon")
	if !strings.Contains(resp.Text, "No migrations pending") {
		t.Errorf("Expected no-op migrate message, got %q", resp.Text)
	}
}

func TestUnknownCommandGetsGenericFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "make-me-a-sandwich", "U123", "simeon")
	if resp.Text != models.GenericFailure().Text {
		t.Errorf("Expected generic failure, got %+v", resp)
	}
}

func TestHelp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "help", "U123", "simeon")
	if resp.ResponseType != models.ResponseEphemeral {
		t.Errorf("Expected ephemeral help, got %q", resp.ResponseType)
	}
	for _, want := range []string{"/coffee help", "/coffee count", "/coffee link", "stomach-pump"} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("Help text missing %q", want)
		}
	}
}

func TestAbout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "about", "U123", "simeon")
	if !strings.Contains(resp.Text, "workspace members") {
		t.Errorf("Expected the generic team label in about text, got %q", resp.Text)
	}
}

func TestUserNameRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "", "U123", "simeon")
	serveSlash(t, h, "", "U123", "simeon-but-cooler")

	var name string
	err := db.QueryRow("SELECT user_name FROM app_user WHERE user_id = 'U123'").Scan(&name)
	if err != nil {
		t.Fatal(err)
	}
	if name != "simeon-but-cooler" {
		t.Errorf("Expected refreshed user name, got %q", name)
	}
}

func TestRepeatCommandsReuseIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "", "U123", "simeon")
	serveSlash(t, h, "", "U123", "simeon")

	var users, teams int
	db.QueryRow("SELECT COUNT(*) FROM app_user").Scan(&users)
	db.QueryRow("SELECT COUNT(*) FROM team").Scan(&teams)
	if users != 1 {
		t.Errorf("app_user rows = %d, want 1", users)
	}
	if teams != 1 {
		t.Errorf("team rows = %d, want 1", teams)
	}
}
