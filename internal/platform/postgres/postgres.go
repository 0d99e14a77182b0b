// Package postgres opens the database connection and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS organization_domains (
	organization_id UUID NOT NULL REFERENCES organizations(id),
	domain          TEXT NOT NULL UNIQUE,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	organization_id UUID REFERENCES organizations(id),
	email           TEXT NOT NULL UNIQUE,
	display_name    TEXT NOT NULL,
	role            TEXT NOT NULL,
	access_status   TEXT NOT NULL,
	password_hash   BYTEA NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS compliance_records (
	id                     UUID PRIMARY KEY,
	kind                   TEXT NOT NULL,
	organization_id        UUID,
	owner_user_id          UUID NOT NULL,
	candidate_display_name TEXT NOT NULL,
	issue_date             TIMESTAMPTZ,
	expiry_date            TIMESTAMPTZ,
	manual_status_override TEXT,
	verified_by            UUID,
	verified_at            TIMESTAMPTZ,
	document_reference     TEXT,
	attributes             JSONB,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_org   ON compliance_records (organization_id);
CREATE INDEX IF NOT EXISTS idx_records_owner ON compliance_records (owner_user_id);
CREATE INDEX IF NOT EXISTS idx_records_kind  ON compliance_records (kind);

CREATE TABLE IF NOT EXISTS activity_log (
	id              UUID PRIMARY KEY,
	organization_id UUID,
	actor_user_id   UUID NOT NULL,
	action          TEXT NOT NULL,
	entity          TEXT NOT NULL,
	entity_id       TEXT NOT NULL,
	entity_name     TEXT,
	description     TEXT,
	metadata        JSONB,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_org     ON activity_log (organization_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_activity_actor   ON activity_log (actor_user_id, created_at DESC);
`

// Open connects, verifies the connection, and applies the schema. Schema
// statements are idempotent so repeated startups are safe.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
