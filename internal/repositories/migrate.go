package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"toko/internal/models"
)

// AutoMigrate creates or updates every table the GORM repositories use.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&productRow{},
		&productColor{},
		&productSize{},
		&cartRow{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
