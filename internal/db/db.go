package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JesseBremer/journal-mate/internal/config"
)

// Dialect identifies the SQL flavour behind a *sql.DB. Queries are written
// with '?' placeholders and rebound for Postgres.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// Rebind rewrites '?' placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func Connect(cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	var (
		database *sql.DB
		dialect  Dialect
		err      error
	)

	switch cfg.Driver {
	case "postgres":
		if cfg.URL == "" {
			return nil, "", fmt.Errorf("database url is required for postgres")
		}
		dialect = Postgres
		database, err = sql.Open("pgx", cfg.URL)
	case "sqlite3":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, "", fmt.Errorf("create db dir: %w", err)
		}
		dialect = SQLite
		database, err = sql.Open("sqlite3", "file:"+cfg.Path+"?_foreign_keys=1&_busy_timeout=5000")
		if err == nil {
			// one writer at a time keeps transactions from tripping SQLITE_BUSY
			database.SetMaxOpenConns(1)
		}
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	return database, dialect, nil
}
