package database

import (
	"fmt"
	"log"

	"github.com/basedrum/basedrum-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres connection. Persistence is optional: the
// caller decides whether an empty DATABASE_URL is an error.
func Connect(databaseURL, environment string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	logLevel := gormlogger.Warn
	if environment == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.SongRecord{},
		&models.ExpansionLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}
