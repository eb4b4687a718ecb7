package database

import (
	"os"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/logging"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection and runs migrations.
// glebarez/sqlite is a pure Go SQLite implementation, so no CGO is needed.
func InitDB() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "crm-tasks.db"
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logging.Logger.Fatalf("failed to connect to database: %v", err)
	}

	// Auto-migrate the schema (creates tables if they don't exist)
	err = DB.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Feedback{},
	)
	if err != nil {
		logging.Logger.Fatalf("failed to migrate database: %v", err)
	}

	logging.Logger.Infof("database connected and migrated (%s)", path)
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
