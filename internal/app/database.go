package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/openretail/poscore/config"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDatabase opens the configured store. Postgres serves multi-lane
// installs; sqlite matches the embedded single-till deployment.
func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		sqldb, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqldb.SetMaxOpenConns(cfg.MaxConn)
		sqldb.SetMaxIdleConns(cfg.IdleConn)
		sqldb.SetConnMaxLifetime(time.Hour)
		return db, nil
	case "sqlite", "":
		path := filepath.Join(workdir, cfg.Name+".db")
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		return db, nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}
}
