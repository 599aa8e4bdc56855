// Package database owns the gorm connection shared by the services.
package database

import (
	"errors"

	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/database/model"
	"github.com/miniblog/miniblog/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func initModels() error {
	models := []any{
		&model.User{},
		&model.Post{},
		&model.Setting{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			logger.Warningf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// InitDB opens the configured database and migrates the schema.
func InitDB(c *config.DatabaseConfig) error {
	if err := c.ValidateConfig(); err != nil {
		return err
	}
	if err := c.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger gormlogger.Interface

	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	gc := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	var dialector gorm.Dialector
	if c.IsPostgreSQL() {
		dialector = postgres.Open(c.GetDSN())
	} else {
		dialector = sqlite.Open(c.GetDSN())
	}

	var err error
	db, err = gorm.Open(dialector, gc)
	if err != nil {
		return err
	}

	if c.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		for _, pragma := range []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
		} {
			if _, err := sqlDB.Exec(pragma); err != nil {
				return err
			}
		}
	}

	return initModels()
}

// InitSQLite is a shortcut for InitDB with a sqlite file at dbPath.
func InitSQLite(dbPath string) error {
	c := config.GetDefaultDatabaseConfig()
	c.Type = config.DatabaseTypeSQLite
	c.SQLite.Path = dbPath
	return InitDB(c)
}

func CloseDB() error {
	if db != nil {
		if db.Dialector.Name() == "sqlite" {
			if err := Checkpoint(); err != nil {
				logger.Warningf("error executing checkpoint: %v", err)
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func Checkpoint() error {
	// Update WAL
	err := db.Exec("PRAGMA wal_checkpoint;").Error
	if err != nil {
		return err
	}
	return nil
}
