// Package model holds the gateway's persisted entities (ModelRecord,
// QuotaStat, OperationLog) and the ModelRepository the dispatch engine,
// probe, and quota tracker use to read and write them (spec.md §4.6, §6).
package model

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
)

// sqlitePath is the on-disk database file used when SQLDSN is empty.
const sqlitePath = "llmgateway.db"

// DB is the process-wide GORM handle, opened once by InitDB.
var DB *gorm.DB

func chooseDB(dsn string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		return openPostgreSQL(dsn)
	case dsn != "":
		return openMySQL(dsn)
	default:
		return openSQLite()
	}
}

func openPostgreSQL(dsn string) (*gorm.DB, error) {
	logger.Logger.Info("using PostgreSQL as database")
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{PrepareStmt: true})
}

func openMySQL(dsn string) (*gorm.DB, error) {
	logger.Logger.Info("using MySQL as database")
	normalized, err := common.NormalizeMySQLDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "normalize MySQL DSN")
	}
	return gorm.Open(mysql.Open(normalized), &gorm.Config{PrepareStmt: true})
}

func openSQLite() (*gorm.DB, error) {
	logger.Logger.Info("SQL_DSN not set, using SQLite as database")
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", sqlitePath, 3000)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{PrepareStmt: true})
}

// InitDB opens the configured backing store and runs AutoMigrate over every
// entity this gateway owns (spec.md §6 Persistence layout).
func InitDB() error {
	var err error
	DB, err = chooseDB(config.SQLDSN)
	if err != nil {
		return errors.Wrap(err, "open database")
	}

	if err := DB.AutoMigrate(&ModelRecord{}); err != nil {
		return errors.Wrap(err, "migrate model_config")
	}
	if err := DB.AutoMigrate(&QuotaStat{}); err != nil {
		return errors.Wrap(err, "migrate quota_stat")
	}
	if err := DB.AutoMigrate(&OperationLog{}); err != nil {
		return errors.Wrap(err, "migrate operation_log")
	}

	logger.Logger.Info("database migration completed", zap.String("dsn_kind", dsnKind(config.SQLDSN)))
	return nil
}

func dsnKind(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		return "postgres"
	case dsn != "":
		return "mysql"
	default:
		return "sqlite"
	}
}

// CloseDB releases the underlying *sql.DB connection pool.
func CloseDB() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql.DB")
	}
	return errors.Wrap(sqlDB.Close(), "close database")
}
