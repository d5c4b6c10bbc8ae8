package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/membership-api/internal/repository"
)

// StatsService reads membership rollups. Buckets are keyed by display name,
// so same-named roles or organizations are summed together.
type StatsService struct {
	store *repository.Store
}

// NewStatsService creates a new StatsService.
func NewStatsService(store *repository.Store) *StatsService {
	return &StatsService{store: store}
}

// CountByRole counts members per role name, listing roles with no members as zero.
func (s *StatsService) CountByRole(ctx context.Context) (map[string]int64, error) {
	counts, err := s.store.Stats.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members by role: %w", err)
	}
	return counts, nil
}

// CountByOrg counts members per organization name, listing empty organizations as zero.
func (s *StatsService) CountByOrg(ctx context.Context) (map[string]int64, error) {
	counts, err := s.store.Stats.CountByOrg(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members by organization: %w", err)
	}
	return counts, nil
}

// CountByOrgAndRole counts members matching filter per organization and role.
// An inverted range is accepted and yields all-zero buckets.
func (s *StatsService) CountByOrgAndRole(ctx context.Context, filter repository.StatsFilter) (map[string]map[string]int64, error) {
	counts, err := s.store.Stats.CountByOrgAndRole(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count members by organization and role: %w", err)
	}
	return counts, nil
}
