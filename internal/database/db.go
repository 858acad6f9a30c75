package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/justsurfingit/job-portal/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// Connect opens the database named by url. Postgres URLs/DSNs go to the
// pgx-backed driver; "sqlite://path" (or "sqlite://:memory:") opens a
// local file for development and tests.
func Connect(url string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	if path, ok := strings.CutPrefix(url, sqlitePrefix); ok {
		return openSQLite(path, cfg)
	}

	db, err := gorm.Open(postgres.Open(url), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logrus.Info("Database connection established")
	return db, nil
}

func openSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Single writer; also keeps a ":memory:" database alive on one connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logrus.WithField("path", path).Info("SQLite ready")
	return db, nil
}

// Migrate creates or updates the tables, including the unique indexes the
// services rely on.
func Migrate(db *gorm.DB) error {
	logrus.Info("Running Migrations...")
	return db.AutoMigrate(&models.Account{}, &models.Company{}, &models.Job{}, &models.Application{})
}

// IsUniqueViolation reports whether err was caused by a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
