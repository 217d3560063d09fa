package db

import (
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
