package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. A Store built
// inside Transaction routes every repository through the same transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Organizations OrganizationRepository
	Roles         RoleRepository
	Members       MemberRepository
	Stats         StatsRepository
}

// NewStore creates a Store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Roles:         NewRoleRepository(db),
		Members:       NewMemberRepository(db),
		Stats:         NewStatsRepository(db),
	}
}

// Transaction runs fn in one unit of work. It commits when fn returns nil and
// rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
