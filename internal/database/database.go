package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres pool. The returned handle is shared by every
// service and must be closed with Close at shutdown.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// Models lists every persisted model in dependency-friendly order.
func Models() []interface{} {
	return []interface{}{
		&models.Company{},
		&models.User{},
		&models.Skill{},
		&models.Job{},
		&models.Application{},
		&models.Message{},
		&models.RefreshToken{},
		&models.PushSubscription{},
		&models.SystemLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
