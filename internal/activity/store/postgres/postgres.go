// Package postgres persists activity entries in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"veristaff/internal/activity"
	id "veristaff/pkg/domain"
)

const defaultListLimit = 100

// Store is the PostgreSQL activity store. The activity_log table is
// append-only; there are no update or delete paths.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry activity.Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}

	var orgID *uuid.UUID
	if entry.OrgID != nil {
		u := uuid.UUID(*entry.OrgID)
		orgID = &u
	}

	query := `
		INSERT INTO activity_log (
			id, organization_id, actor_user_id, action, entity,
			entity_id, entity_name, description, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		orgID,
		uuid.UUID(entry.ActorUserID),
		string(entry.Action),
		entry.Entity,
		entry.EntityID,
		entry.EntityName,
		entry.Description,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, query activity.ListQuery) ([]activity.Entry, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	sqlQuery := `
		SELECT id, organization_id, actor_user_id, action, entity,
		       entity_id, entity_name, description, metadata, created_at
		FROM activity_log
		WHERE ($1::uuid IS NULL OR organization_id = $1)
		  AND ($2::uuid IS NULL OR actor_user_id = $2)
		  AND ($3::text = '' OR entity = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	var orgID, actorID *uuid.UUID
	if query.OrgID != nil {
		u := uuid.UUID(*query.OrgID)
		orgID = &u
	}
	if query.ActorUserID != nil {
		u := uuid.UUID(*query.ActorUserID)
		actorID = &u
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, orgID, actorID, query.Entity, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (activity.Entry, error) {
	var (
		entry    activity.Entry
		entryID  uuid.UUID
		orgID    *uuid.UUID
		actorID  uuid.UUID
		action   string
		metadata []byte
	)
	if err := rows.Scan(
		&entryID, &orgID, &actorID, &action, &entry.Entity,
		&entry.EntityID, &entry.EntityName, &entry.Description, &metadata, &entry.CreatedAt,
	); err != nil {
		return activity.Entry{}, fmt.Errorf("scan activity entry: %w", err)
	}
	entry.ID = id.EntryID(entryID)
	entry.ActorUserID = id.UserID(actorID)
	entry.Action = activity.Action(action)
	if orgID != nil {
		o := id.OrgID(*orgID)
		entry.OrgID = &o
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
			return activity.Entry{}, fmt.Errorf("unmarshal activity metadata: %w", err)
		}
	}
	return entry, nil
}
