package repository

import (
	"context"

	"github.com/yukikurage/membership-api/internal/models"
	"gorm.io/gorm"
)

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

// Create creates a new role
func (r *GormRoleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uint64) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByNameInOrg finds a role by (org_id, name)
func (r *GormRoleRepository) FindByNameInOrg(ctx context.Context, orgID uint64, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, name).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListByOrg lists the roles of an organization
func (r *GormRoleRepository) ListByOrg(ctx context.Context, orgID uint64) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("id ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// EnsureRoles creates each template missing from the organization, keyed on
// (org_id, name), and returns the roles in template order.
func (r *GormRoleRepository) EnsureRoles(ctx context.Context, orgID uint64, templates []models.RoleTemplate) ([]models.Role, error) {
	roles := make([]models.Role, len(templates))
	for i, tmpl := range templates {
		if err := r.db.WithContext(ctx).
			Where(models.Role{OrgID: orgID, Name: tmpl.Name}).
			Attrs(models.Role{Description: tmpl.Description}).
			FirstOrCreate(&roles[i]).Error; err != nil {
			return nil, err
		}
	}
	return roles, nil
}
