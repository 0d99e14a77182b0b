package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"veristaff/internal/identity/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

const userColumns = `id, organization_id, email, display_name, role, access_status, password_hash, created_at, updated_at`

// Postgres is the PostgreSQL user store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(user.ID),
		orgIDValue(user.OrgID),
		strings.ToLower(user.Email),
		user.DisplayName,
		string(user.Role),
		string(user.AccessStatus),
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE email = $1`, strings.ToLower(email))
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)

	var (
		user   models.User
		userID uuid.UUID
		orgID  *uuid.UUID
		role   string
		status string
	)
	err := row.Scan(&userID, &orgID, &user.Email, &user.DisplayName, &role, &status,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.ID = id.UserID(userID)
	if orgID != nil {
		converted := id.OrgID(*orgID)
		user.OrgID = &converted
	}
	user.Role = models.Role(role)
	user.AccessStatus = models.AccessStatus(status)
	return &user, nil
}

func (s *Postgres) Update(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET organization_id = $2, email = $3, display_name = $4, role = $5,
		    access_status = $6, password_hash = $7, updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(user.ID),
		orgIDValue(user.OrgID),
		strings.ToLower(user.Email),
		user.DisplayName,
		string(user.Role),
		string(user.AccessStatus),
		user.PasswordHash,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func orgIDValue(orgID *id.OrgID) any {
	if orgID == nil {
		return nil
	}
	return uuid.UUID(*orgID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
