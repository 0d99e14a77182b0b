package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"veristaff/internal/org/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

// InMemory is the mutex-guarded organization store for unit tests and
// single-node development.
type InMemory struct {
	mu      sync.RWMutex
	orgs    map[id.OrgID]*models.Organization
	domains map[string]*models.OrgDomain // keyed by lowercase domain
}

func NewInMemory() *InMemory {
	return &InMemory{
		orgs:    make(map[id.OrgID]*models.Organization),
		domains: make(map[string]*models.OrgDomain),
	}
}

func (s *InMemory) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[org.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.orgs {
		if existing.Slug == org.Slug {
			return sentinel.ErrConflict
		}
	}
	clone := *org
	s.orgs[org.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, orgID id.OrgID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *org
	return &clone, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug = strings.ToLower(slug)
	for _, org := range s.orgs {
		if org.Slug == slug {
			clone := *org
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		clone := *org
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[org.ID]; !exists {
		return sentinel.ErrNotFound
	}
	clone := *org
	s.orgs[org.ID] = &clone
	return nil
}

func (s *InMemory) AddDomain(_ context.Context, domain *models.OrgDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(domain.Domain)
	if _, exists := s.domains[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *domain
	s.domains[key] = &clone
	return nil
}

func (s *InMemory) ListDomains(_ context.Context, orgID id.OrgID) ([]*models.OrgDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.OrgDomain
	for _, domain := range s.domains {
		if domain.OrgID == orgID {
			clone := *domain
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (s *InMemory) FindActiveByDomain(_ context.Context, domain string) (*models.OrgDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.domains[strings.ToLower(domain)]
	if !ok || !entry.IsActive {
		return nil, sentinel.ErrNotFound
	}
	org, ok := s.orgs[entry.OrgID]
	if !ok || !org.IsActive {
		return nil, sentinel.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}
