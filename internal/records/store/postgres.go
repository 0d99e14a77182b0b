package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"veristaff/internal/records/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

// Postgres persists all six record kinds in one table discriminated by the
// kind column. Kind-specific attributes ride in a jsonb column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const recordColumns = `
	id, kind, organization_id, owner_user_id, candidate_display_name,
	issue_date, expiry_date, manual_status_override,
	verified_by, verified_at, document_reference, attributes,
	created_at, updated_at
`

func (s *Postgres) Find(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM compliance_records WHERE id = $1`,
		uuid.UUID(recordID),
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return record, nil
}

func (s *Postgres) List(ctx context.Context, query Query) ([]*models.Record, error) {
	// The scope predicate is baked into the SQL so out-of-scope rows never
	// leave the database.
	sqlQuery := `
		SELECT ` + recordColumns + `
		FROM compliance_records
		WHERE ($1::boolean
		       OR ($2::uuid IS NOT NULL AND organization_id = $2)
		       OR ($3::uuid IS NOT NULL AND owner_user_id = $3))
		  AND ($4::text = '' OR kind = $4)
		  AND ($5::uuid IS NULL OR owner_user_id = $5)
		ORDER BY created_at, id
	`
	var scopeOrg, scopeOwner, owner *uuid.UUID
	if query.Scope.OrgID != nil {
		u := uuid.UUID(*query.Scope.OrgID)
		scopeOrg = &u
	}
	if query.Scope.OwnerUserID != nil {
		u := uuid.UUID(*query.Scope.OwnerUserID)
		scopeOwner = &u
	}
	if query.Owner != nil {
		u := uuid.UUID(*query.Owner)
		owner = &u
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery,
		query.Scope.All, scopeOrg, scopeOwner, string(query.Kind), owner)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *Postgres) Create(ctx context.Context, record *models.Record) error {
	attributes, err := json.Marshal(record.Attributes)
	if err != nil {
		return fmt.Errorf("marshal record attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compliance_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		uuid.UUID(record.ID), string(record.Kind), orgIDValue(record.OrgID),
		uuid.UUID(record.OwnerUserID), record.CandidateName,
		record.IssueDate, record.ExpiryDate, nullString(record.ManualOverride),
		userIDValue(record.VerifiedBy), record.VerifiedAt,
		nullString(record.DocumentRef), attributes,
		record.CreatedAt, record.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, record *models.Record) error {
	attributes, err := json.Marshal(record.Attributes)
	if err != nil {
		return fmt.Errorf("marshal record attributes: %w", err)
	}
	// Last write wins; there is no revision column.
	result, err := s.db.ExecContext(ctx, `
		UPDATE compliance_records SET
			organization_id = $2, candidate_display_name = $3,
			issue_date = $4, expiry_date = $5, manual_status_override = $6,
			verified_by = $7, verified_at = $8, document_reference = $9,
			attributes = $10, updated_at = $11
		WHERE id = $1
	`,
		uuid.UUID(record.ID), orgIDValue(record.OrgID), record.CandidateName,
		record.IssueDate, record.ExpiryDate, nullString(record.ManualOverride),
		userIDValue(record.VerifiedBy), record.VerifiedAt,
		nullString(record.DocumentRef), attributes, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireRow(result)
}

func (s *Postgres) Delete(ctx context.Context, recordID id.RecordID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM compliance_records WHERE id = $1`, uuid.UUID(recordID))
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record     models.Record
		recordID   uuid.UUID
		kind       string
		orgID      *uuid.UUID
		ownerID    uuid.UUID
		override   sql.NullString
		verifiedBy *uuid.UUID
		verifiedAt *time.Time
		docRef     sql.NullString
		attributes []byte
	)
	if err := row.Scan(
		&recordID, &kind, &orgID, &ownerID, &record.CandidateName,
		&record.IssueDate, &record.ExpiryDate, &override,
		&verifiedBy, &verifiedAt, &docRef, &attributes,
		&record.CreatedAt, &record.UpdatedAt,
	); err != nil {
		return nil, err
	}

	record.ID = id.RecordID(recordID)
	record.Kind = models.Kind(kind)
	record.OwnerUserID = id.UserID(ownerID)
	if orgID != nil {
		o := id.OrgID(*orgID)
		record.OrgID = &o
	}
	record.ManualOverride = override.String
	if verifiedBy != nil {
		v := id.UserID(*verifiedBy)
		record.VerifiedBy = &v
	}
	record.VerifiedAt = verifiedAt
	record.DocumentRef = docRef.String
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &record.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal record attributes: %w", err)
		}
	}
	return &record, nil
}

func orgIDValue(orgID *id.OrgID) *uuid.UUID {
	if orgID == nil {
		return nil
	}
	u := uuid.UUID(*orgID)
	return &u
}

func userIDValue(userID *id.UserID) *uuid.UUID {
	if userID == nil {
		return nil
	}
	u := uuid.UUID(*userID)
	return &u
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
