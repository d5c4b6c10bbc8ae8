package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrInvalidOrganizationName = errors.New("organization name cannot be empty")
	ErrFailedToCreateOrg       = errors.New("failed to create organization")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	store    *repository.Store
	auth     *AuthService
	notifier notify.Enqueuer
	log      *zap.Logger
}

// NewOrganizationService creates a new OrganizationService. auth supplies
// credential creation for invited users that do not exist yet.
func NewOrganizationService(store *repository.Store, auth *AuthService, notifier notify.Enqueuer, log *zap.Logger) *OrganizationService {
	return &OrganizationService{
		store:    store,
		auth:     auth,
		notifier: notifier,
		log:      log.Named("organization"),
	}
}

// CreateWithOwner creates an organization, its bootstrap roles and an active
// Owner membership for ownerID. Nothing is kept if any step fails.
func (s *OrganizationService) CreateWithOwner(ctx context.Context, name string, personal bool, ownerID uint64) (*models.Organization, *models.Member, error) {
	var (
		org    *models.Organization
		member *models.Member
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		org, member, err = createOrganizationWithOwner(ctx, tx, name, personal, ownerID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("organization created",
		zap.Uint64("org_id", org.ID),
		zap.Uint64("owner_id", ownerID),
	)
	return org, member, nil
}

func createOrganizationWithOwner(ctx context.Context, tx *repository.Store, name string, personal bool, ownerID uint64) (*models.Organization, *models.Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrInvalidOrganizationName
	}

	org := &models.Organization{
		Name:     name,
		Personal: personal,
	}
	if err := tx.Organizations.Create(ctx, org); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToCreateOrg, err)
	}

	if _, err := bootstrapRoles(ctx, tx, org.ID); err != nil {
		return nil, nil, err
	}

	// Resolved by name: role ids are per organization.
	owner, err := findRoleByName(ctx, tx, org.ID, models.RoleOwner)
	if err != nil {
		return nil, nil, err
	}

	member, err := addMember(ctx, tx, org.ID, ownerID, owner, models.MemberStatusActive)
	if err != nil {
		return nil, nil, err
	}
	return org, member, nil
}

// InviteExisting adds the user with email to orgID under roleName. An unknown
// email gets a new pending user holding a temporary password that must be
// rotated.
func (s *OrganizationService) InviteExisting(ctx context.Context, email string, orgID uint64, roleName string) (*models.MemberDetail, error) {
	var (
		detail       *models.MemberDetail
		tempPassword string
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := findOrganization(ctx, tx, orgID); err != nil {
			return err
		}

		user, err := tx.Users.FindByEmail(ctx, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tempPassword, err = utils.GenerateTemporaryPassword()
			if err != nil {
				return fmt.Errorf("failed to generate temporary password: %w", err)
			}
			user, err = s.auth.createUser(ctx, tx, email, tempPassword, models.UserStatusPending, true)
		}
		if err != nil {
			return err
		}

		role, err := findRoleByName(ctx, tx, orgID, roleName)
		if err != nil {
			return err
		}

		member, err := addMember(ctx, tx, orgID, user.ID, role, models.MemberStatusPending)
		if err != nil {
			return err
		}

		detail, err = tx.Members.FindDetail(ctx, member.ID)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member invited",
		zap.Uint64("member_id", detail.ID),
		zap.Uint64("org_id", orgID),
		zap.Bool("new_user", tempPassword != ""),
	)
	s.notifier.Enqueue(invitationMessage(detail.UserEmail, detail.OrgName, tempPassword))
	return detail, nil
}

// GetOrganization retrieves an organization by ID.
func (s *OrganizationService) GetOrganization(ctx context.Context, orgID uint64) (*models.Organization, error) {
	return findOrganization(ctx, s.store, orgID)
}

func findOrganization(ctx context.Context, repo *repository.Store, orgID uint64) (*models.Organization, error) {
	org, err := repo.Organizations.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// DeleteOrganization removes an organization with its members and roles.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, orgID uint64) error {
	if err := s.store.Organizations.Delete(ctx, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.log.Info("organization deleted", zap.Uint64("org_id", orgID))
	return nil
}

// ListForUser returns the memberships of userID, one per organization.
func (s *OrganizationService) ListForUser(ctx context.Context, userID uint64) ([]models.MemberDetail, error) {
	memberships, err := s.store.Members.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}
