package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/membership-api/internal/models"
)

// Models lists every table in migration order.
var Models = []interface{}{
	&models.User{},
	&models.Organization{},
	&models.Role{},
	&models.Member{},
}

// Migrate creates or updates tables and the secondary indexes.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db, log); err != nil {
		return err
	}
	log.Info("Database migrations completed")
	return nil
}

type secondaryIndex struct {
	model   interface{}
	name    string
	columns []string
}

// secondaryIndexes back the lookups and rollups that filter on non-key columns.
var secondaryIndexes = []secondaryIndex{
	{&models.Member{}, "idx_members_user_id", []string{"user_id"}},
	{&models.Member{}, "idx_members_role_id", []string{"role_id"}},
	{&models.Member{}, "idx_members_created_at", []string{"created_at"}},
	{&models.Member{}, "idx_members_status", []string{"status"}},
	{&models.Role{}, "idx_roles_org_id", []string{"org_id"}},
}

// AddIndexes creates missing secondary indexes. Safe to run repeatedly.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range secondaryIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			db.Statement.Quote(idx.name),
			db.Statement.Quote(stmt.Schema.Table),
			quoteColumns(db, idx.columns),
		)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", stmt.Schema.Table))
	}

	return nil
}

func quoteColumns(db *gorm.DB, columns []string) string {
	out := ""
	for i, col := range columns {
		if i > 0 {
			out += ", "
		}
		out += db.Statement.Quote(col)
	}
	return out
}
