package repository

import (
	"context"
	"time"

	"github.com/yukikurage/membership-api/internal/database"
	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/utils"
	"gorm.io/gorm"
)

const memberDetailColumns = "members.id, members.org_id, members.user_id, members.role_id, members.status, " +
	"members.created_at, members.updated_at, " +
	"users.email AS user_email, organizations.name AS org_name, roles.name AS role_name"

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create creates a new member
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByID finds a member by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByOrgAndUser finds the membership of a user in an organization
func (r *GormMemberRepository) FindByOrgAndUser(ctx context.Context, orgID, userID uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateRole points a member at another role and refreshes updated_at
func (r *GormMemberRepository) UpdateRole(ctx context.Context, member *models.Member, roleID uint64) error {
	now := time.Now().Unix()
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{"role_id": roleID, "updated_at": now}).Error; err != nil {
		return err
	}
	member.RoleID = roleID
	member.UpdatedAt = now
	return nil
}

// Delete hard-deletes a member
func (r *GormMemberRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormMemberRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("members").
		Select(memberDetailColumns).
		Joins("JOIN users ON users.id = members.user_id").
		Joins("JOIN organizations ON organizations.id = members.org_id").
		Joins("JOIN roles ON roles.id = members.role_id")
}

// FindDetail finds a member joined with user email, org name and role name
func (r *GormMemberRepository) FindDetail(ctx context.Context, id uint64) (*models.MemberDetail, error) {
	var details []models.MemberDetail
	if err := r.detailQuery(ctx).
		Where("members.id = ?", id).
		Limit(1).
		Scan(&details).Error; err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &details[0], nil
}

// ListByOrg lists members of an organization ordered by id; nil page returns every row
func (r *GormMemberRepository) ListByOrg(ctx context.Context, orgID uint64, page *utils.PaginationParams) ([]models.MemberDetail, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("org_id = ?", orgID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.detailQuery(ctx).
		Where("members.org_id = ?", orgID).
		Order("members.id ASC")
	if page != nil {
		query = query.Scopes(database.Paginate(*page))
	}

	details := []models.MemberDetail{}
	if err := query.Scan(&details).Error; err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListByUser lists memberships of a user ordered by id
func (r *GormMemberRepository) ListByUser(ctx context.Context, userID uint64) ([]models.MemberDetail, error) {
	details := []models.MemberDetail{}
	if err := r.detailQuery(ctx).
		Where("members.user_id = ?", userID).
		Order("members.id ASC").
		Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}
