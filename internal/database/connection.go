package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/s/learnhub/internal/config"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// Connect opens the local database. The database container is often still
// starting when the service comes up, so the connection is retried.
func Connect(conf *config.Config) (*gorm.DB, error) {
	level := gormLogger.Warn
	if conf.Debug {
		level = gormLogger.Info
	}
	gormConf := &gorm.Config{Logger: NewGormLogger(level)}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  conf.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormConf)
		if err == nil {
			log.Println("[INFO] connected to database")
			return db, nil
		}

		log.Printf("[WARN] database connection attempt %d failed, retrying: %v", i+1, err)
		time.Sleep(connectDelay)
	}

	return nil, fmt.Errorf("database: no connection after %d attempts: %w", connectAttempts, err)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
