// Package database opens connections to the supported engines and adapts
// them to the executor's Conn interface.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	go_ora "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"
)

const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
	Oracle   = "oracle"
	MSSQL    = "mssql"
)

// TrustedUser as the user name selects Windows integrated authentication
// for mssql.
const TrustedUser = "<WindowsUser>"

type Config struct {
	Type        string
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	SSLMode     string
	PingTimeout time.Duration
}

func (c Config) Validate() error {
	switch c.engine() {
	case SQLite:
		if c.Database == "" {
			return errors.New("sqlite3 requires a database file path")
		}
	case Postgres, Oracle, MSSQL:
		if c.Host == "" || c.Database == "" {
			return fmt.Errorf("%s requires host and database", c.engine())
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Type)
	}
	if c.PingTimeout <= 0 {
		return errors.New("ping timeout must be positive")
	}
	return nil
}

func (c Config) engine() string {
	return strings.ToLower(strings.TrimSpace(c.Type))
}

// Driver returns the database/sql driver name and data source for c.
func (c Config) Driver() (string, string, error) {
	switch c.engine() {
	case Postgres:
		return "pgx", c.postgresDSN(), nil
	case SQLite:
		return "sqlite", sqliteDSN(c.Database), nil
	case Oracle:
		port := c.portOr(1521)
		return "oracle", go_ora.BuildUrl(c.Host, port, c.Database, c.User, c.Password, nil), nil
	case MSSQL:
		return "sqlserver", c.mssqlDSN(), nil
	default:
		return "", "", fmt.Errorf("unsupported database type %q", c.Type)
	}
}

func (c Config) portOr(def int) int {
	if c.Port > 0 {
		return c.Port
	}
	return def
}

func (c Config) postgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.portOr(5432))),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c Config) mssqlDSN() string {
	u := url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.portOr(1433))),
	}
	q := url.Values{"database": {c.Database}}
	// Without credentials the driver falls back to integrated auth.
	if c.User != "" && c.User != TrustedUser {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		q.Set("encrypt", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// sqliteDSN opens the file read-only; a missing file is an error rather
// than an empty new database.
func sqliteDSN(path string) string {
	return "file:" + path + "?mode=ro"
}

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	driver, dsn, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.engine(), err)
	}

	return db, nil
}
