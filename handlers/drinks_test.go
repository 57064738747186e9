// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/commoncode/coffeebot/testutil"
)

func TestAddSingleCoffee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "", "U123", "simeon")
	if resp.Text != "That's coffee number 1 for you today, and number 1 for workspace members today" {
		t.Errorf("Unexpected response %q", resp.Text)
	}

	var drinks int
	db.QueryRow("SELECT COUNT(*) FROM drink").Scan(&drinks)
	if drinks != 1 {
		t.Errorf("drink rows = %d, want 1", drinks)
	}
}

func TestAddMultipleCoffees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "3", "U123", "simeon")
	if !strings.Contains(resp.Text, "That's coffee number 3 for you today") {
		t.Errorf("Unexpected response %q", resp.Text)
	}
}

func TestAddLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "6", "U123", "simeon")
	if resp.Text != "You can't add more than 5 coffees at a time" {
		t.Errorf("Unexpected response %q", resp.Text)
	}

	var drinks int
	db.QueryRow("SELECT COUNT(*) FROM drink").Scan(&drinks)
	if drinks != 0 {
		t.Errorf("drink rows = %d, want 0", drinks)
	}
}

func TestStomachPump(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "2", "U123", "simeon")
	resp := serveSlash(t, h, "stomach-pump", "U123", "simeon")
	if !strings.Contains(resp.Text, "That's coffee number 1 for you today") {
		t.Errorf("Unexpected response %q", resp.Text)
	}
}

func TestSubtractLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "5", "U123", "simeon")
	resp := serveSlash(t, h, "-3", "U123", "simeon")
	if resp.Text != "You can't remove more than 2 coffees at a time" {
		t.Errorf("Unexpected response %q", resp.Text)
	}

	var drinks int
	db.QueryRow("SELECT COUNT(*) FROM drink").Scan(&drinks)
	if drinks != 5 {
		t.Errorf("drink rows = %d, want 5", drinks)
	}
}

func TestSubtractOnlyTouchesToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	// Establish identity and one drink for today.
	serveSlash(t, h, "", "U123", "simeon")

	var dbUserID, abstractUserID int64
	err := db.QueryRow("SELECT id, abstract_user_id FROM app_user WHERE user_id = 'U123'").
		Scan(&dbUserID, &abstractUserID)
	if err != nil {
		t.Fatal(err)
	}

	// Yesterday's drink must survive any amount of pumping.
	testutil.AddTestDrink(t, db, abstractUserID, dbUserID, time.Now().AddDate(0, 0, -2))

	serveSlash(t, h, "stomach-pump", "U123", "simeon")
	resp := serveSlash(t, h, "stomach-pump", "U123", "simeon")
	if !strings.Contains(resp.Text, "That's coffee number 0 for you today") {
		t.Errorf("Unexpected response %q", resp.Text)
	}

	var drinks int
	db.QueryRow("SELECT COUNT(*) FROM drink").Scan(&drinks)
	if drinks != 1 {
		t.Errorf("drink rows = %d, want the historical drink to survive", drinks)
	}
}

func TestTeamCountSpansUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "2", "U123", "simeon")
	resp := serveSlash(t, h, "", "U789", "bec")
	if !strings.Contains(resp.Text, "That's coffee number 1 for you today, and number 3 for workspace members today") {
		t.Errorf("Unexpected response %q", resp.Text)
	}
}
