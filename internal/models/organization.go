package models

import "gorm.io/datatypes"

type Organization struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Status    int            `gorm:"not null;default:0" json:"status"`
	Personal  bool           `gorm:"not null;default:false" json:"personal"`
	Settings  datatypes.JSON `json:"settings,omitempty"`
	CreatedAt int64          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64          `gorm:"autoUpdateTime" json:"updated_at"`
}
