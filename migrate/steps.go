// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// Level 1: the original flat schema. One row per coffee, identified
// only by the Slack user, plus the backup audit table.

const createCoffeeTable = `
CREATE TABLE IF NOT EXISTS coffee (
    id BIGSERIAL NOT NULL,
    user_id VARCHAR(50) NOT NULL,
    user_name VARCHAR(200),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (id)
);`

const createBackupsTable = `
CREATE TABLE IF NOT EXISTS backups (
    id BIGSERIAL NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    backup_until TIMESTAMP WITH TIME ZONE NOT NULL,
    successful BOOLEAN NOT NULL,
    message TEXT,
    PRIMARY KEY (id)
);`

// Level 2: the normalized model. Drinks hang off a per-workspace user
// which hangs off a team and a cross-workspace abstract user.

const createAbstractUserTable = `
CREATE TABLE IF NOT EXISTS abstract_user (
    id BIGSERIAL NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (id)
);`

const createTeamTable = `
CREATE TABLE IF NOT EXISTS team (
    id BIGSERIAL NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    team_id VARCHAR(50) NOT NULL,
    team_domain VARCHAR(200) NOT NULL,
    label VARCHAR(200),
    PRIMARY KEY (id),
    CONSTRAINT team_team_id_unique UNIQUE (team_id)
);`

const createAppUserTable = `
CREATE TABLE IF NOT EXISTS app_user (
    id BIGSERIAL NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    user_id VARCHAR(50) NOT NULL,
    user_name VARCHAR(200) NOT NULL,
    label VARCHAR(200),
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    team_id BIGINT NOT NULL,
    abstract_user_id BIGINT NOT NULL,
    PRIMARY KEY (id),
    CONSTRAINT app_user_fk_team FOREIGN KEY (team_id) REFERENCES team(id),
    CONSTRAINT app_user_fk_abstract_user FOREIGN KEY (abstract_user_id) REFERENCES abstract_user(id),
    CONSTRAINT app_user_team_id_user_id_unique UNIQUE (team_id, user_id)
);
CREATE INDEX IF NOT EXISTS app_user_idx_user_id_team_id ON app_user(user_id, team_id);`

// legacy_id carries the source coffee.id for rows produced by the
// level-2 copy; its uniqueness is what makes the copy rerun-safe.
// Live inserts leave it NULL.
const createDrinkTable = `
CREATE TABLE IF NOT EXISTS drink (
    id BIGSERIAL NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    abstract_user_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    drink VARCHAR(20) DEFAULT 'coffee',
    legacy_id BIGINT,
    PRIMARY KEY (id),
    CONSTRAINT drink_fk_abstract_user FOREIGN KEY (abstract_user_id) REFERENCES abstract_user(id),
    CONSTRAINT drink_fk_user FOREIGN KEY (user_id) REFERENCES app_user(id),
    CONSTRAINT drink_legacy_id_unique UNIQUE (legacy_id)
);
CREATE INDEX IF NOT EXISTS drink_idx_created_at ON drink(created_at);
CREATE INDEX IF NOT EXISTS drink_idx_abstract_user_id ON drink(abstract_user_id);`

const createLinkWordsTable = `
CREATE TABLE IF NOT EXISTS link_words (
    abstract_user_id BIGINT NOT NULL,
    words VARCHAR(200),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (abstract_user_id),
    CONSTRAINT link_words_fk_abstract_user FOREIGN KEY (abstract_user_id) REFERENCES abstract_user(id)
);
CREATE INDEX IF NOT EXISTS link_words_idx_words ON link_words(words);`

// Steps returns the canonical migration chain. Shipped steps are
// closed to modification; new schema work appends level 3.
func Steps() []Step {
	return []Step{
		{
			Level: 1,
			Name:  "legacy flat schema",
			Ops: []Operation{
				Schema("create coffee table", createCoffeeTable),
				Schema("create backups table", createBackupsTable),
			},
		},
		{
			Level: 2,
			Name:  "normalized team/user/drink schema",
			Ops: []Operation{
				Schema("create abstract_user table", createAbstractUserTable),
				Schema("create team table", createTeamTable),
				Schema("create app_user table", createAppUserTable),
				Schema("create drink table", createDrinkTable),
				Schema("create link_words table", createLinkWordsTable),
				Data("create workspace team", createWorkspaceTeam),
				Data("migrate legacy users", migrateLegacyUsers),
				Data("copy legacy drinks", copyLegacyDrinks),
			},
		},
	}
}

// DefaultRegistry builds the registry for the canonical chain. The
// chain is static, so a validation failure is a programming error.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(Steps()...)
	if err != nil {
		panic(fmt.Errorf("invalid built-in migration chain: %w", err))
	}
	return reg
}

// createWorkspaceTeam records the triggering workspace as the team all
// legacy rows belong to. The level-2 transform assumes the bot served a
// single workspace before normalization; that held in production.
func createWorkspaceTeam(ctx context.Context, tx *sql.Tx, rc RunContext) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO team (created_at, team_id, team_domain)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id) DO NOTHING
	`, rc.Now, rc.TeamID, rc.TeamDomain)
	return err
}

// migrateLegacyUsers creates an abstract_user and app_user pair for
// every distinct legacy user that doesn't already have one. The NOT
// EXISTS guard keeps a rerun from minting orphan abstract users.
func migrateLegacyUsers(ctx context.Context, tx *sql.Tx, rc RunContext) error {
	var teamID int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM team WHERE team_id = $1", rc.TeamID).Scan(&teamID)
	if err != nil {
		return fmt.Errorf("failed to find workspace team %s: %w", rc.TeamID, err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT c.user_id, COALESCE(MAX(c.user_name), c.user_id)
		FROM coffee c
		WHERE NOT EXISTS (
			SELECT 1 FROM app_user u
			WHERE u.user_id = c.user_id AND u.team_id = $1
		)
		GROUP BY c.user_id
	`, teamID)
	if err != nil {
		return fmt.Errorf("failed to list legacy users: %w", err)
	}

	type legacyUser struct {
		userID   string
		userName string
	}
	var pending []legacyUser
	for rows.Next() {
		var u legacyUser
		if err := rows.Scan(&u.userID, &u.userName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan legacy user: %w", err)
		}
		pending = append(pending, u)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, u := range pending {
		var abstractUserID int64
		err := tx.QueryRowContext(ctx,
			"INSERT INTO abstract_user (created_at) VALUES ($1) RETURNING id",
			rc.Now,
		).Scan(&abstractUserID)
		if err != nil {
			return fmt.Errorf("failed to create abstract user for %s: %w", u.userID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO app_user (created_at, user_id, user_name, team_id, abstract_user_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, rc.Now, u.userID, u.userName, teamID, abstractUserID)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.userID, err)
		}
	}

	return nil
}

// copyLegacyDrinks moves every coffee row into drink. Each target row
// remembers its source via legacy_id, so re-running after a partial
// failure inserts only rows that are still missing.
func copyLegacyDrinks(ctx context.Context, tx *sql.Tx, rc RunContext) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO drink (created_at, abstract_user_id, user_id, legacy_id)
		SELECT c.created_at, u.abstract_user_id, u.id, c.id
		FROM coffee c
		INNER JOIN app_user u ON u.user_id = c.user_id
		ON CONFLICT (legacy_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to copy legacy drinks: %w", err)
	}
	return nil
}
