package database

import (
	"fmt"
	"sync"

	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	dbMu sync.Mutex
)

// PostgresDSN builds the libpq connection string for cfg.
func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresPort,
		cfg.PostgresSSLMode,
	)
}

// GetPostgres returns the shared connection, opening it on first success.
func GetPostgres(cfg *config.Config) (*gorm.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		return db, nil
	}

	conn, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to connect to PostgreSQL")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"host": cfg.PostgresHost,
		"db":   cfg.PostgresDB,
	}).Info("Connected to PostgreSQL")
	db = conn
	return db, nil
}

func ClosePostgres() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		db = nil
		return sqlDB.Close()
	}
	return nil
}
