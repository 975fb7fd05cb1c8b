package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oxdrill/oxdrill-api/models"
)

var Database *gorm.DB

// Connect opens the storage-slot database: postgres when DB_URL is set,
// otherwise a local sqlite file.
func Connect() error {
	var err error
	if Env.DatabaseURL != "" {
		Database, err = gorm.Open(postgres.Open(Env.DatabaseURL), &gorm.Config{})
	} else {
		Database, err = gorm.Open(sqlite.Open(Env.DatabasePath), &gorm.Config{})
	}
	if err != nil {
		panic("failed to connect database")
	}

	err = Database.AutoMigrate(&models.StorageSlot{})
	if err != nil {
		panic("failed to auto migrate database")
	}

	return nil
}
