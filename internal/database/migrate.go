package database

import (
	"fmt"

	"postfeed/internal/middleware"

	"gorm.io/gorm"
)

// Migrate brings the schema for PersistentModels up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.Info("Database migration completed")
	return nil
}
