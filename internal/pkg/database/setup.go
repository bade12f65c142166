package database

import (
	"fmt"
	"log"
	"time"

	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Setup opens the MySQL connection and auto-migrates the schema. The handle
// is returned instead of stored in a package global so callers can inject it
// into repositories.
func Setup() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                      dsn,
			DefaultStringSize:        256,
			DisableDatetimePrecision: true,
		}), &gorm.Config{})
		if err == nil {
			if migrateErr := db.AutoMigrate(
				&models.PushEndpoint{},
				&models.Entitlement{},
				&models.BillingWebhookEvent{},
			); migrateErr != nil {
				return nil, migrateErr
			}
			return db, nil
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, err
}
