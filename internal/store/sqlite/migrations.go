package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// gooseLogger routes goose output through the service logger
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

// migrate brings the schema to the latest embedded version
func migrate(db *sql.DB, log logger.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get database version: %w", err)
	}
	log.Info("sqlite schema up to date", logger.Int64("version", version))
	return nil
}
