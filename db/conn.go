// Package db opens the database connection and keeps the schema current
package db

import (
	"errors"
	"fmt"

	"vportfolio/portfolio-api/model"
	"vportfolio/portfolio-api/security"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the configured database, migrates the four tables and seeds
// the primary admin account when the users table is empty.
func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch viper.GetString("db.driver") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("db.dsn"))
	default:
		dialector = sqlite.Open(viper.GetString("db.path"))
	}

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which the services map to conflicts
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Session{}, model.File{}, model.Reaction{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedAdmin creates the primary admin on first start. Every later guard
// (last-admin check, primary-admin protection) assumes this account
// exists.
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users, %w", err)
	}

	if count > 0 {
		return nil
	}

	password := viper.GetString("admin.password")
	if password == "" {
		return errors.New("admin.password can't be empty")
	}

	hash, err := security.New().GenerateFromPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password, %w", err)
	}

	err = db.Create(&model.User{
		Username:     model.PrimaryAdminUsername,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to seed admin user, %w", err)
	}

	zap.L().Info("Seeded primary admin account", zap.String("username", model.PrimaryAdminUsername))
	return nil
}
