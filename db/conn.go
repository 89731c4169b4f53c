// Package db opens the database the service keeps its records in
package db

import (
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/pkg/util"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New connects to the database described by driver and dsn and migrates the
// usercontent table. sessions and accountlogs belong to the account service and are
// only created when migrateExternal is set, which is meant for standalone setups.
// Supported drivers are sqlite, mysql and postgres
func New(driver, dsn string, migrateExternal bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database dsn can't be empty")
	}

	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		// Inside a container the database file has to be mounted by the host,
		// creating a fresh one would silently lose every record on restart
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", dsn)
			}
		}

		dialector = sqlite.Open(dsn)
	case "mysql":
		if !strings.Contains(dsn, "parseTime=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}

			dsn += sep + "parseTime=true"
		}

		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle, %w", err)
		}

		// SQLite allows a single writer, background audit writes would otherwise
		// race request handlers into "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(model.Content{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if migrateExternal {
		err = db.AutoMigrate(model.Session{}, model.AccountLog{})
		if err != nil {
			return nil, fmt.Errorf("failed to automigrate account tables, %w", err)
		}
	}

	return db, nil
}
