// Package database owns the gorm connection and schema migrations.
package database

import (
	"fmt"
	"log"
	"time"

	"github.com/lumen-studio/lumen-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Connect opens a postgres connection with sane pool defaults.
func Connect(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Database connected")
	return db, nil
}

// Migrate runs auto-migrations for all models.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	start := time.Now()

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserCredits{},
		&models.UsageLog{},
		&models.Recipe{},
		&models.ProposalLog{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	elapsed := time.Since(start)
	if elapsed > slowQueryThreshold {
		log.Printf("⚠️  Migrations took %v", elapsed)
	} else {
		log.Printf("✅ Migrations completed in %v", elapsed)
	}
	return nil
}
