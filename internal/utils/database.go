package utils

import (
	"fmt"
	"log/slog"

	"trustify/internal/config"
	"trustify/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const homeContent = `# Welcome

This site shows the Trustify trust bar at the bottom of every page once it
is enabled under **Settings → Trustify Settings**.
`

// InitDatabase opens the SQLite database, migrates the schema and seeds
// default settings and the home page.
func InitDatabase(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "trustify.db"
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if logLevel == "debug" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite: a single connection avoids locking issues and keeps
	// ":memory:" databases shared.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// 自动迁移模式
	if err := db.AutoMigrate(&models.Setting{}, &models.Page{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedSettings(db); err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}
	if err := seedPages(db); err != nil {
		return nil, fmt.Errorf("failed to seed pages: %w", err)
	}

	slog.Debug("Database initialized", "dsn", dsn)
	return db, nil
}

// seedSettings populates the database with default settings if they don't exist.
func seedSettings(db *gorm.DB) error {
	defaultSettings := map[string]string{
		"password":         "admin",
		"site_title":       "My Site",
		"site_description": "Powered by Trustify Widgets",
	}

	for key, value := range defaultSettings {
		setting := models.Setting{Key: key}
		result := db.Where(models.Setting{Key: key}).Attrs(models.Setting{Value: value}).FirstOrCreate(&setting)
		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

func seedPages(db *gorm.DB) error {
	page := models.Page{Slug: "home"}
	return db.Where(models.Page{Slug: "home"}).
		Attrs(models.Page{Title: "Home", Content: homeContent, Published: true}).
		FirstOrCreate(&page).Error
}
