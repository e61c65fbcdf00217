package model

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/prismstudio/director-core/common/env"
	"github.com/prismstudio/director-core/common/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func chooseDialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn)
	case strings.Contains(dsn, "@tcp("):
		return mysql.Open(dsn)
	case dsn == "":
		return sqlite.Open("director-core.db")
	default:
		return sqlite.Open(dsn)
	}
}

// InitDB opens the audit database. The driver is inferred from SQL_DSN; an
// empty DSN falls back to a local sqlite file so the service runs with zero
// configuration.
func InitDB() error {
	dsn := os.Getenv("SQL_DSN")
	db, err := gorm.Open(chooseDialector(dsn), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(env.Int("SQL_MAX_IDLE_CONNS", 10))
	sqlDB.SetMaxOpenConns(env.Int("SQL_MAX_OPEN_CONNS", 100))
	sqlDB.SetConnMaxLifetime(time.Duration(env.Int("SQL_MAX_LIFETIME", 60)) * time.Second)

	logger.SysLog("database migration started")
	if err = db.AutoMigrate(&RequestLog{}); err != nil {
		return err
	}
	logger.SysLog("database migrated")
	DB = db
	return nil
}

// Ping reports database health for the monitor endpoint.
func Ping(ctx context.Context) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
