package dto

import (
	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/utils"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Status    int    `json:"status"`
	Personal  bool   `json:"personal"`
	CreatedAt int64  `json:"created_at"`
}

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OrgID       uint64 `json:"org_id"`
}

// MemberDTO represents a membership with the names it references
type MemberDTO struct {
	ID        uint64              `json:"id"`
	OrgID     uint64              `json:"org_id"`
	UserID    uint64              `json:"user_id"`
	RoleID    uint64              `json:"role_id"`
	Status    models.MemberStatus `json:"status"`
	Email     string              `json:"email,omitempty"`
	OrgName   string              `json:"org_name,omitempty"`
	RoleName  string              `json:"role_name,omitempty"`
	CreatedAt int64               `json:"created_at"`
	UpdatedAt int64               `json:"updated_at"`
}

// OrganizationDetailDTO represents an organization with its members
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []MemberDTO `json:"members"`
	YourRole string      `json:"your_role"`
}

// MemberListResponse is a page of organization members
type MemberListResponse struct {
	Members    []MemberDTO              `json:"members"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Status:    org.Status,
		Personal:  org.Personal,
		CreatedAt: org.CreatedAt,
	}
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		OrgID:       role.OrgID,
	}
}

// ToRoleDTOs converts a slice of roles
func ToRoleDTOs(roles []models.Role) []RoleDTO {
	out := make([]RoleDTO, len(roles))
	for i, role := range roles {
		out[i] = ToRoleDTO(role)
	}
	return out
}

// ToMemberDTO converts a bare Member model; name fields stay empty
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		ID:        member.ID,
		OrgID:     member.OrgID,
		UserID:    member.UserID,
		RoleID:    member.RoleID,
		Status:    member.Status,
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}
}

// FromMemberDetail converts a joined member row to MemberDTO
func FromMemberDetail(detail models.MemberDetail) MemberDTO {
	return MemberDTO{
		ID:        detail.ID,
		OrgID:     detail.OrgID,
		UserID:    detail.UserID,
		RoleID:    detail.RoleID,
		Status:    detail.Status,
		Email:     detail.UserEmail,
		OrgName:   detail.OrgName,
		RoleName:  detail.RoleName,
		CreatedAt: detail.CreatedAt,
		UpdatedAt: detail.UpdatedAt,
	}
}

// FromMemberDetails converts a slice of joined member rows
func FromMemberDetails(details []models.MemberDetail) []MemberDTO {
	out := make([]MemberDTO, len(details))
	for i, detail := range details {
		out[i] = FromMemberDetail(detail)
	}
	return out
}

// ToOrganizationDetailDTO converts an organization with its members
func ToOrganizationDetailDTO(org models.Organization, members []models.MemberDetail, yourRole string) OrganizationDetailDTO {
	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Members:         FromMemberDetails(members),
		YourRole:        yourRole,
	}
}
