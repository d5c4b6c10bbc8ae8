package models

import "gorm.io/datatypes"

type MemberStatus int

const (
	MemberStatusPending MemberStatus = 0
	MemberStatusActive  MemberStatus = 1
)

// Member links exactly one user to one organization under one role.
type Member struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	OrgID     uint64         `gorm:"not null;uniqueIndex:idx_members_org_user,priority:1" json:"org_id"`
	UserID    uint64         `gorm:"not null;uniqueIndex:idx_members_org_user,priority:2" json:"user_id"`
	RoleID    uint64         `gorm:"not null" json:"role_id"`
	Status    MemberStatus   `gorm:"not null;default:0" json:"status"`
	Settings  datatypes.JSON `json:"settings,omitempty"`
	CreatedAt int64          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64          `gorm:"autoUpdateTime" json:"updated_at"`

	// Constraints only; never preloaded. Navigation goes through repository queries.
	Org  *Organization `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"-"`
	User *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role *Role         `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

// MemberDetail is a member row joined with the names it references.
type MemberDetail struct {
	ID        uint64       `json:"id"`
	OrgID     uint64       `json:"org_id"`
	UserID    uint64       `json:"user_id"`
	RoleID    uint64       `json:"role_id"`
	Status    MemberStatus `json:"status"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
	UserEmail string       `json:"user_email"`
	OrgName   string       `json:"org_name"`
	RoleName  string       `json:"role_name"`
}
