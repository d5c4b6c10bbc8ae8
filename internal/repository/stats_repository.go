package repository

import (
	"context"

	"github.com/yukikurage/membership-api/internal/database"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

type labelCount struct {
	Label string
	Total int64
}

// CountByRole counts members per role name. Roles sharing a name across
// organizations fall into the same bucket; roles without members count zero.
func (r *GormStatsRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []labelCount
	if err := r.db.WithContext(ctx).
		Table("roles").
		Select("roles.name AS label, COUNT(members.id) AS total").
		Joins("LEFT JOIN members ON members.role_id = roles.id").
		Group("roles.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

// CountByOrg counts members per organization name. Organizations sharing a
// name fall into the same bucket.
func (r *GormStatsRepository) CountByOrg(ctx context.Context) (map[string]int64, error) {
	var rows []labelCount
	if err := r.db.WithContext(ctx).
		Table("organizations").
		Select("organizations.name AS label, COUNT(members.id) AS total").
		Joins("LEFT JOIN members ON members.org_id = organizations.id").
		Group("organizations.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

type orgRoleCount struct {
	OrgName  string
	RoleName *string
	Total    int64
}

// CountByOrgAndRole returns every organization with every one of its roles,
// counting only members that pass filter.
func (r *GormStatsRepository) CountByOrgAndRole(ctx context.Context, filter StatsFilter) (map[string]map[string]int64, error) {
	var buckets []orgRoleCount
	if err := r.db.WithContext(ctx).
		Table("organizations").
		Select("organizations.name AS org_name, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.org_id = organizations.id").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}

	result := make(map[string]map[string]int64)
	for _, b := range buckets {
		if result[b.OrgName] == nil {
			result[b.OrgName] = make(map[string]int64)
		}
		if b.RoleName != nil {
			result[b.OrgName][*b.RoleName] = 0
		}
	}

	var counts []orgRoleCount
	if err := r.db.WithContext(ctx).
		Table("members").
		Select("organizations.name AS org_name, roles.name AS role_name, COUNT(members.id) AS total").
		Joins("JOIN organizations ON organizations.id = members.org_id").
		Joins("JOIN roles ON roles.id = members.role_id").
		Scopes(
			database.MembersCreatedBetween(filter.FromTime, filter.ToTime),
			database.MembersWithStatus(filter.Status),
		).
		Group("organizations.name, roles.name").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	for _, c := range counts {
		if c.RoleName == nil {
			continue
		}
		if result[c.OrgName] == nil {
			result[c.OrgName] = make(map[string]int64)
		}
		result[c.OrgName][*c.RoleName] += c.Total
	}
	return result, nil
}

func toCountMap(rows []labelCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] += row.Total
	}
	return out
}
