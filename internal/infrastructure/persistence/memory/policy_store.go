// Package memory provides in-memory persistence backed by an expiring cache.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/errors"
)

// policyStore keeps materialized policies in an in-process cache. Policies
// never expire; the store lives as long as the service.
type policyStore struct {
	cache *gocache.Cache
	mu    sync.Mutex
}

// NewPolicyStore creates the in-memory policy store.
func NewPolicyStore() domainService.PolicyStore {
	return &policyStore{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (s *policyStore) Save(ctx context.Context, policy *models.Policy) error {
	if policy.PolicyID == "" {
		return errors.ErrInvalidRequest("policy id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, found := s.cache.Get(policy.PolicyID); found {
		policy.Version = existing.(*models.Policy).Version + 1
	}
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = time.Now()
	}
	s.cache.Set(policy.PolicyID, policy, gocache.NoExpiration)
	return nil
}

func (s *policyStore) FindByID(ctx context.Context, policyID string) (*models.Policy, error) {
	if v, found := s.cache.Get(policyID); found {
		return v.(*models.Policy), nil
	}
	return nil, errors.ErrNotFound("policy", policyID)
}

func (s *policyStore) List(ctx context.Context) ([]*models.Policy, error) {
	items := s.cache.Items()
	policies := make([]*models.Policy, 0, len(items))
	for _, item := range items {
		policies = append(policies, item.Object.(*models.Policy))
	}
	sort.Slice(policies, func(i, j int) bool {
		return policies[i].CreatedAt.After(policies[j].CreatedAt)
	})
	return policies, nil
}

func (s *policyStore) ListByStatus(ctx context.Context, status models.PolicyStatus) ([]*models.Policy, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Policy, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *policyStore) UpdateStatus(ctx context.Context, policyID string, status models.PolicyStatus, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.cache.Get(policyID)
	if !found {
		return errors.ErrNotFound("policy", policyID)
	}
	policy := v.(*models.Policy)
	policy.Status = status
	policy.UpdatedBy = updatedBy
	policy.UpdatedAt = time.Now()
	policy.Version++
	if status == models.PolicyApproved || status == models.PolicyActive {
		policy.ApprovedBy = updatedBy
		policy.ApprovedAt = time.Now()
	}
	s.cache.Set(policyID, policy, gocache.NoExpiration)
	return nil
}

func (s *policyStore) Delete(ctx context.Context, policyID string) error {
	if _, found := s.cache.Get(policyID); !found {
		return errors.ErrNotFound("policy", policyID)
	}
	s.cache.Delete(policyID)
	return nil
}
