// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/commoncode/coffeebot/models"
	"github.com/commoncode/coffeebot/testutil"
)

// extractLinkCode pulls the code out of the issue-response text.
func extractLinkCode(t *testing.T, resp models.Response) string {
	t.Helper()

	const prefix = "Your link code is "
	if !strings.HasPrefix(resp.Text, prefix) {
		t.Fatalf("Unexpected link response %q", resp.Text)
	}
	rest := strings.TrimPrefix(resp.Text, prefix)
	return strings.SplitN(rest, ".", 2)[0]
}

func TestLinkIssueAndRedeem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	// The code owner has some history.
	serveSlash(t, h, "2", "U123", "simeon")
	code := extractLinkCode(t, serveSlash(t, h, "link", "U123", "simeon"))

	if len(strings.Split(code, "-")) != 4 {
		t.Errorf("Expected a 4-word code, got %q", code)
	}

	// A second identity logs a drink, then links to the first.
	serveSlash(t, h, "", "U789", "bec")
	resp := serveSlash(t, h, "link "+code, "U789", "bec")
	if resp.Text != "Your slack user has been linked successfully" {
		t.Fatalf("Unexpected redeem response %q", resp.Text)
	}

	var ownerAbstract, linkedAbstract int64
	if err := db.QueryRow("SELECT abstract_user_id FROM app_user WHERE user_id = 'U123'").Scan(&ownerAbstract); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT abstract_user_id FROM app_user WHERE user_id = 'U789'").Scan(&linkedAbstract); err != nil {
		t.Fatal(err)
	}
	if ownerAbstract != linkedAbstract {
		t.Errorf("Users not merged: %d vs %d", ownerAbstract, linkedAbstract)
	}

	// All three drinks now belong to the shared identity.
	var merged int
	db.QueryRow("SELECT COUNT(*) FROM drink WHERE abstract_user_id = $1", ownerAbstract).Scan(&merged)
	if merged != 3 {
		t.Errorf("Merged drink count = %d, want 3", merged)
	}

	// The code is consumed.
	var remaining int
	db.QueryRow("SELECT COUNT(*) FROM link_words").Scan(&remaining)
	if remaining != 0 {
		t.Errorf("link_words rows = %d, want 0 after redemption", remaining)
	}
}

func TestLinkUnknownCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	resp := serveSlash(t, h, "link not-a-real-code-at-all", "U123", "simeon")
	if !strings.Contains(resp.Text, "could not be found or is too old") {
		t.Errorf("Unexpected response %q", resp.Text)
	}
}

func TestLinkCodeIsSingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "", "U123", "simeon")
	code := extractLinkCode(t, serveSlash(t, h, "link", "U123", "simeon"))

	serveSlash(t, h, "", "U789", "bec")
	serveSlash(t, h, "link "+code, "U789", "bec")

	serveSlash(t, h, "", "U555", "jon")
	resp := serveSlash(t, h, "link "+code, "U555", "jon")
	if !strings.Contains(resp.Text, "could not be found or is too old") {
		t.Errorf("Expected spent code to be rejected, got %q", resp.Text)
	}
}

func TestLinkCodeExpires(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "", "U123", "simeon")
	code := extractLinkCode(t, serveSlash(t, h, "link", "U123", "simeon"))

	// Age the code past the redemption window.
	if _, err := db.Exec(
		"UPDATE link_words SET created_at = $1", time.Now().Add(-25*time.Hour),
	); err != nil {
		t.Fatal(err)
	}

	serveSlash(t, h, "", "U789", "bec")
	resp := serveSlash(t, h, "link "+code, "U789", "bec")
	if !strings.Contains(resp.Text, "could not be found or is too old") {
		t.Errorf("Expected stale code to be rejected, got %q", resp.Text)
	}
}

func TestLinkReissueReplacesCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := newTestHandler(db)

	serveSlash(t, h, "", "U123", "simeon")
	first := extractLinkCode(t, serveSlash(t, h, "link", "U123", "simeon"))
	second := extractLinkCode(t, serveSlash(t, h, "link", "U123", "simeon"))

	if first == second {
		t.Fatalf("Expected a fresh code on reissue, got %q twice", first)
	}

	var rows int
	db.QueryRow("SELECT COUNT(*) FROM link_words").Scan(&rows)
	if rows != 1 {
		t.Errorf("link_words rows = %d, want 1 live code per user", rows)
	}

	serveSlash(t, h, "", "U789", "bec")
	resp := serveSlash(t, h, "link "+first, "U789", "bec")
	if !strings.Contains(resp.Text, "could not be found or is too old") {
		t.Errorf("Expected the replaced code to be dead, got %q", resp.Text)
	}
}
