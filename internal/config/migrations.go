package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"occamy_tracker/internal/models"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20261001_create_activity_entries",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ActivityEntry{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.ActivityEntry{})
			},
		},
		{
			ID: "20261012_index_officer_date",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_activity_entries_officer_date ON activity_entries (officer_id, date)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_activity_entries_officer_date").Error
			},
		},
	})
	return m.Migrate()
}
