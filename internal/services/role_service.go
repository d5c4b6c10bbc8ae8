package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrDuplicateRoleName = errors.New("role name already exists in organization")
	ErrInvalidRoleName   = errors.New("role name cannot be empty")
)

// RoleService manages the named roles scoped to each organization.
type RoleService struct {
	store *repository.Store
}

// NewRoleService creates a new RoleService.
func NewRoleService(store *repository.Store) *RoleService {
	return &RoleService{store: store}
}

// Bootstrap makes sure the organization has the Owner, Admin and Member roles.
// Calling it again creates nothing.
func (s *RoleService) Bootstrap(ctx context.Context, orgID uint64) ([]models.Role, error) {
	var roles []models.Role
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := findOrganization(ctx, tx, orgID); err != nil {
			return err
		}
		var err error
		roles, err = bootstrapRoles(ctx, tx, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func bootstrapRoles(ctx context.Context, tx *repository.Store, orgID uint64) ([]models.Role, error) {
	roles, err := tx.Roles.EnsureRoles(ctx, orgID, models.BootstrapRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap roles: %w", err)
	}
	return roles, nil
}

// FindByNameInOrg resolves a role by its name within one organization.
func (s *RoleService) FindByNameInOrg(ctx context.Context, orgID uint64, name string) (*models.Role, error) {
	return findRoleByName(ctx, s.store, orgID, name)
}

func findRoleByName(ctx context.Context, repo *repository.Store, orgID uint64, name string) (*models.Role, error) {
	role, err := repo.Roles.FindByNameInOrg(ctx, orgID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// Create adds a custom role to an organization.
func (s *RoleService) Create(ctx context.Context, orgID uint64, name, description string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRoleName
	}

	role := &models.Role{
		OrgID:       orgID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := findOrganization(ctx, tx, orgID); err != nil {
			return err
		}

		if _, err := tx.Roles.FindByNameInOrg(ctx, orgID, name); err == nil {
			return ErrDuplicateRoleName
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check role name: %w", err)
		}

		if err := tx.Roles.Create(ctx, role); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRoleName
			}
			return fmt.Errorf("failed to create role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// ListByOrg returns the roles of an organization.
func (s *RoleService) ListByOrg(ctx context.Context, orgID uint64) ([]models.Role, error) {
	roles, err := s.store.Roles.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// GetRole retrieves a role by ID.
func (s *RoleService) GetRole(ctx context.Context, roleID uint64) (*models.Role, error) {
	return findRole(ctx, s.store, roleID)
}
