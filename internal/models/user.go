package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserStatus int

const (
	UserStatusPending UserStatus = 0
	UserStatusActive  UserStatus = 1
)

type User struct {
	ID           uint64            `gorm:"primarykey" json:"id"`
	Email        string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"type:varchar(255);not null" json:"-"`
	Profile      datatypes.JSONMap `gorm:"not null" json:"profile"`
	Status       UserStatus        `gorm:"not null;default:0" json:"status"`
	Settings     datatypes.JSON    `json:"settings,omitempty"`
	// MustRotatePassword marks a temporary credential issued on invite.
	MustRotatePassword bool  `gorm:"not null;default:false" json:"must_rotate_password"`
	CreatedAt          int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Profile == nil {
		u.Profile = datatypes.JSONMap{}
	}
	return nil
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
