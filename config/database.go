package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"onethy/models"
)

func ConnectDB() error {
	logrus.Info("Attempting to connect to database...")

	dialector, err := dialectorFor(AppConfig)
	if err != nil {
		return err
	}

	logLevel := logger.Warn
	if !AppConfig.IsProduction() {
		logLevel = logger.Info
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	if AppConfig.DBDriver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
		sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("Successfully connected to the database")
	logrus.Info("Starting database migration...")
	if err := models.AutoMigrate(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	if err := models.CreateDefaultPlans(DB); err != nil {
		return fmt.Errorf("failed to seed default plans: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "sqlite":
		logrus.WithField("path", cfg.DBPath).Info("Using sqlite database")
		return sqlite.Open(cfg.DBPath + "?_foreign_keys=on"), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		logrus.WithField("dsn", maskPassword(dsn)).Info("Using postgres database")
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
