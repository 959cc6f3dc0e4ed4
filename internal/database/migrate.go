package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration for the given SQL backend.
func Migrate(ctx context.Context, db *sql.DB, backend string, log *slog.Logger) error {
	var dialect string
	switch backend {
	case BackendMySQL:
		dialect = "mysql"
	case BackendSQLite:
		dialect = "sqlite3"
	default:
		return fmt.Errorf("migrate: %w: %q", ErrUnsupportedURL, backend)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations/"+backend); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	if l.log == nil {
		return
	}
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	if l.log != nil {
		l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	}
	panic(fmt.Sprintf(format, v...))
}
