package database

import (
	"gorm.io/gorm"

	"github.com/s/learnhub/internal/models"
)

// AutoMigrate creates the tables this service owns. Catalog, users and
// payments live in the backend and are never stored here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.VideoCompletion{},
		&models.UserLog{},
	)
}
