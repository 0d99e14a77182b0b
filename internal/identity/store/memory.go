package store

import (
	"context"
	"strings"
	"sync"

	"veristaff/internal/identity/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

// InMemory is the mutex-guarded user store for unit tests and single-node
// development.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	clone := cloneUser(user)
	s.users[user.ID] = clone
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(s.users[userID]), nil
}

func (s *InMemory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, strings.ToLower(existing.Email))
	clone := cloneUser(user)
	s.users[user.ID] = clone
	s.byEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

func cloneUser(user *models.User) *models.User {
	clone := *user
	if user.OrgID != nil {
		orgID := *user.OrgID
		clone.OrgID = &orgID
	}
	if user.PasswordHash != nil {
		clone.PasswordHash = append([]byte(nil), user.PasswordHash...)
	}
	return &clone
}
