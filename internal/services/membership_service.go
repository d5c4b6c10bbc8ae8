package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound        = errors.New("member not found")
	ErrAlreadyMember         = errors.New("user is already a member of this organization")
	ErrRoleOrgMismatch       = errors.New("role does not belong to the organization")
	ErrNotOrganizationMember = errors.New("user is not a member of this organization")
	ErrInsufficientRole      = errors.New("role does not allow this action")
)

// MembershipService maintains the user-organization-role links.
type MembershipService struct {
	store    *repository.Store
	notifier notify.Enqueuer
	log      *zap.Logger
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(store *repository.Store, notifier notify.Enqueuer, log *zap.Logger) *MembershipService {
	return &MembershipService{
		store:    store,
		notifier: notifier,
		log:      log.Named("membership"),
	}
}

// AddMember links a user to an organization under a role of that organization.
// A user already in the organization is rejected, never updated.
func (s *MembershipService) AddMember(ctx context.Context, orgID, userID, roleID uint64) (*models.Member, error) {
	var member *models.Member
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		role, err := findRole(ctx, tx, roleID)
		if err != nil {
			return err
		}

		var addErr error
		member, addErr = addMember(ctx, tx, orgID, userID, role, models.MemberStatusPending)
		return addErr
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member added",
		zap.Uint64("member_id", member.ID),
		zap.Uint64("org_id", orgID),
		zap.Uint64("user_id", userID),
	)
	return member, nil
}

// addMember checks and inserts inside tx. The (org_id, user_id) unique index
// turns a concurrent duplicate into ErrAlreadyMember.
func addMember(ctx context.Context, tx *repository.Store, orgID, userID uint64, role *models.Role, status models.MemberStatus) (*models.Member, error) {
	if role.OrgID != orgID {
		return nil, ErrRoleOrgMismatch
	}

	if _, err := tx.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := tx.Members.FindByOrgAndUser(ctx, orgID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.Member{
		OrgID:  orgID,
		UserID: userID,
		RoleID: role.ID,
		Status: status,
	}
	if err := tx.Members.Create(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

// RemoveMember hard-deletes a membership.
func (s *MembershipService) RemoveMember(ctx context.Context, memberID uint64) error {
	if err := s.store.Members.Delete(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.log.Info("member removed", zap.Uint64("member_id", memberID))
	return nil
}

// ChangeRole moves a member to another role of the same organization.
func (s *MembershipService) ChangeRole(ctx context.Context, memberID, roleID uint64) (*models.MemberDetail, error) {
	return s.changeRole(ctx, memberID, func(tx *repository.Store, _ *models.Member) (*models.Role, error) {
		return findRole(ctx, tx, roleID)
	})
}

// ChangeRoleByName moves a member to the role with the given name in its organization.
func (s *MembershipService) ChangeRoleByName(ctx context.Context, memberID uint64, roleName string) (*models.MemberDetail, error) {
	return s.changeRole(ctx, memberID, func(tx *repository.Store, member *models.Member) (*models.Role, error) {
		return findRoleByName(ctx, tx, member.OrgID, roleName)
	})
}

func (s *MembershipService) changeRole(ctx context.Context, memberID uint64, resolve func(tx *repository.Store, member *models.Member) (*models.Role, error)) (*models.MemberDetail, error) {
	var detail *models.MemberDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		member, err := findMember(ctx, tx, memberID)
		if err != nil {
			return err
		}

		role, err := resolve(tx, member)
		if err != nil {
			return err
		}
		if role.OrgID != member.OrgID {
			return ErrRoleOrgMismatch
		}

		if err := tx.Members.UpdateRole(ctx, member, role.ID); err != nil {
			return fmt.Errorf("failed to update member role: %w", err)
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

	s.log.Info("member role changed",
		zap.Uint64("member_id", detail.ID),
		zap.String("role", detail.RoleName),
	)
	s.notifier.Enqueue(roleUpdatedMessage(detail.UserEmail, detail.OrgName, detail.RoleName))
	return detail, nil
}

// GetMember returns a member with its user email, organization name and role name.
func (s *MembershipService) GetMember(ctx context.Context, memberID uint64) (*models.MemberDetail, error) {
	detail, err := s.store.Members.FindDetail(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return detail, nil
}

// ListByOrg lists an organization's members. A nil page lists all of them.
func (s *MembershipService) ListByOrg(ctx context.Context, orgID uint64, page *utils.PaginationParams) ([]models.MemberDetail, int64, error) {
	members, total, err := s.store.Members.ListByOrg(ctx, orgID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

// ListByUser lists the memberships of a user across organizations.
func (s *MembershipService) ListByUser(ctx context.Context, userID uint64) ([]models.MemberDetail, error) {
	members, err := s.store.Members.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return members, nil
}

// RequireRole returns the caller's membership in orgID when it holds one of
// roleNames. With no roleNames any membership passes.
func (s *MembershipService) RequireRole(ctx context.Context, orgID, userID uint64, roleNames ...string) (*models.MemberDetail, error) {
	member, err := s.store.Members.FindByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	detail, err := s.GetMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	if len(roleNames) == 0 {
		return detail, nil
	}
	for _, name := range roleNames {
		if detail.RoleName == name {
			return detail, nil
		}
	}
	return nil, ErrInsufficientRole
}

func findMember(ctx context.Context, repo *repository.Store, memberID uint64) (*models.Member, error) {
	member, err := repo.Members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

func findRole(ctx context.Context, repo *repository.Store, roleID uint64) (*models.Role, error) {
	role, err := repo.Roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}
