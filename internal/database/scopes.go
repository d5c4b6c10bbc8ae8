package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/membership-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// MembersCreatedBetween keeps members with from <= created_at <= to.
// A nil bound is not applied.
func MembersCreatedBetween(from, to *int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("members.created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("members.created_at <= ?", *to)
		}
		return db
	}
}

// MembersWithStatus keeps members whose status equals *status, when set.
func MembersWithStatus(status *int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status != nil {
			db = db.Where("members.status = ?", *status)
		}
		return db
	}
}
