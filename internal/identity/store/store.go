// Package store persists user accounts.
package store

import (
	"context"

	"veristaff/internal/identity/models"
	id "veristaff/pkg/domain"
)

// Store is the user storage collaborator. Email addresses are unique
// platform-wide; Create returns sentinel.ErrConflict on reuse.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
