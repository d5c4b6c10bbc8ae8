package repository

import (
	"context"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/utils"
)

// Lookups return gorm.ErrRecordNotFound when no row matches; services translate it.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePassword stores a new hash, clears the rotation flag and activates the user
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// Delete deletes an organization with its members and roles
	Delete(ctx context.Context, id uint64) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	// Create creates a new role
	Create(ctx context.Context, role *models.Role) error

	// FindByID finds a role by ID
	FindByID(ctx context.Context, id uint64) (*models.Role, error)

	// FindByNameInOrg finds a role by (org_id, name)
	FindByNameInOrg(ctx context.Context, orgID uint64, name string) (*models.Role, error)

	// ListByOrg lists the roles of an organization
	ListByOrg(ctx context.Context, orgID uint64) ([]models.Role, error)

	// EnsureRoles creates the missing templates for an organization and returns all of them
	EnsureRoles(ctx context.Context, orgID uint64, templates []models.RoleTemplate) ([]models.Role, error)
}

// MemberRepository defines the interface for membership data access
type MemberRepository interface {
	// Create creates a new member
	Create(ctx context.Context, member *models.Member) error

	// FindByID finds a member by ID
	FindByID(ctx context.Context, id uint64) (*models.Member, error)

	// FindByOrgAndUser finds the membership of a user in an organization
	FindByOrgAndUser(ctx context.Context, orgID, userID uint64) (*models.Member, error)

	// UpdateRole points a member at another role
	UpdateRole(ctx context.Context, member *models.Member, roleID uint64) error

	// Delete hard-deletes a member
	Delete(ctx context.Context, id uint64) error

	// FindDetail finds a member joined with user email, org name and role name
	FindDetail(ctx context.Context, id uint64) (*models.MemberDetail, error)

	// ListByOrg lists members of an organization; nil page returns every row
	ListByOrg(ctx context.Context, orgID uint64, page *utils.PaginationParams) ([]models.MemberDetail, int64, error)

	// ListByUser lists memberships of a user
	ListByUser(ctx context.Context, userID uint64) ([]models.MemberDetail, error)
}

// StatsFilter narrows members counted by CountByOrgAndRole. Nil fields are not applied.
type StatsFilter struct {
	FromTime *int64
	ToTime   *int64
	Status   *int
}

// StatsRepository defines read-only rollups over memberships
type StatsRepository interface {
	// CountByRole counts members per role name across all organizations
	CountByRole(ctx context.Context) (map[string]int64, error)

	// CountByOrg counts members per organization name
	CountByOrg(ctx context.Context) (map[string]int64, error)

	// CountByOrgAndRole counts filtered members per organization name and role name
	CountByOrgAndRole(ctx context.Context, filter StatsFilter) (map[string]map[string]int64, error)
}
