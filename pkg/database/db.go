package database

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
	err  error
)

// Connect opens the shared PostgreSQL pool once per process.
func Connect(dsn string) (*gorm.DB, error) {
	once.Do(func() {
		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Warn),
		})
		if err != nil {
			err = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get sql.DB: %w", dbErr)
			return
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		DB = db
	})

	return DB, err
}
