package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type openConfig struct {
	debug          bool
	driver         string
	server         string
	pingTimeout    time.Duration
	otelIdentifier string
}

func (c openConfig) GetDebug() bool                { return c.debug }
func (c openConfig) GetDriver() string             { return c.driver }
func (c openConfig) GetServer() string             { return c.server }
func (c openConfig) GetPingTimeout() time.Duration { return c.pingTimeout }
func (c openConfig) GetOtelIdentifier() string     { return c.otelIdentifier }

// OpenSQLite opens a SQLite backed persistence client. The DSN follows the
// mattn/go-sqlite3 syntax, e.g. "file:session.db?_foreign_keys=on".
func OpenSQLite(dsn string) (*persistence.Client, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: sqlite dsn is required")
	}
	sqlDB, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	client, err := persistence.New(openConfig{
		driver:         DriverSQLite,
		server:         dsn,
		pingTimeout:    time.Second,
		otelIdentifier: "blog-session",
	}, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

// OpenPostgres opens a Postgres backed persistence client using lib/pq
// connection string syntax.
func OpenPostgres(dsn string) (*persistence.Client, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres db: %w", err)
	}

	client, err := persistence.New(openConfig{
		driver:         DriverPostgres,
		server:         dsn,
		pingTimeout:    5 * time.Second,
		otelIdentifier: "blog-session",
	}, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}
