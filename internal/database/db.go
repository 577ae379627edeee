package database

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var (
	DB *gorm.DB
	mu sync.Mutex
)

// connect opens the DB, registers read replicas and applies pool configuration
func connect() (*gorm.DB, error) {
	cfg := config.Cfg.Database
	db, err := gorm.Open(mysql.Open(config.Cfg.Dns), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, dsn := range cfg.Replicas {
			replicas = append(replicas, mysql.Open(dsn))
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	lifetime := time.Duration(cfg.MaxLifetime) * time.Minute
	sqlDB.SetConnMaxIdleTime(lifetime)
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

// ensureConnection verifies DB connectivity and reconnects if needed
func ensureConnection() error {
	mu.Lock()
	defer mu.Unlock()

	if DB != nil {
		sqlDB, err := DB.DB()
		if err == nil && sqlDB.Ping() == nil {
			return nil
		}
		logger.WithModule(config.ModuleDatabase).Warn("database: connection lost, reconnecting")
	}

	newDB, err := connect()
	if err != nil {
		logger.Error(err, "%v: failed to connect to database", config.ModuleDatabase)
		return err
	}
	DB = newDB
	return nil
}

// GetDB returns a healthy *gorm.DB, connecting lazily on first use
func GetDB() (*gorm.DB, error) {
	if err := ensureConnection(); err != nil {
		return nil, err
	}
	return DB, nil
}

// Ping checks the primary connection.
func Ping(ctx context.Context) error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the tables for models.
func Migrate(ctx context.Context, models ...interface{}) error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).AutoMigrate(models...)
}
