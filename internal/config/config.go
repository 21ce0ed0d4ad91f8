// Package config loads the sqlexport settings from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/animus-labs/sqlexport/internal/platform/env"
)

const (
	DefaultFile         = "sqlexport.yaml"
	DefaultMaxCells     = 100000
	DefaultDelimiter    = "\t"
	DefaultQuote        = `"`
	DefaultQueryTimeout = 10 * time.Minute
	DefaultPingTimeout  = 5 * time.Second
)

// Supported database types.
const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
	Oracle   = "oracle"
	MSSQL    = "mssql"
)

type Config struct {
	HashSalt string   `yaml:"hash_salt"`
	Database Database `yaml:"database"`
	Export   Export   `yaml:"export"`
}

type Database struct {
	Type        string        `yaml:"type"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Database    string        `yaml:"database"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	SSLMode     string        `yaml:"sslmode"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

type Export struct {
	MaxCells            int           `yaml:"max_cells"`
	Delimiter           string        `yaml:"delimiter"`
	Quote               string        `yaml:"quote"`
	QueryTimeout        time.Duration `yaml:"query_timeout"`
	TrimLeadingComments bool          `yaml:"trim_leading_comments"`
	OutputDir           string        `yaml:"output_dir"`
	ReportFile          string        `yaml:"report_file"`
}

func Default() Config {
	return Config{
		Database: Database{
			Type:        Postgres,
			PingTimeout: DefaultPingTimeout,
		},
		Export: Export{
			MaxCells:     DefaultMaxCells,
			Delimiter:    DefaultDelimiter,
			Quote:        DefaultQuote,
			QueryTimeout: DefaultQueryTimeout,
		},
	}
}

// Load reads path on top of Default and applies environment overrides. A
// missing file is only an error when required is set. Callers that connect
// to a database run Validate on the result.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	env.OverrideString(&c.HashSalt, "SQLEXPORT_HASH_SALT")
	env.OverrideString(&c.Database.Type, "SQLEXPORT_DB_TYPE")
	env.OverrideString(&c.Database.Host, "SQLEXPORT_DB_HOST")
	env.OverrideString(&c.Database.Database, "SQLEXPORT_DB_NAME")
	env.OverrideString(&c.Database.User, "SQLEXPORT_DB_USER")
	env.OverrideString(&c.Database.Password, "SQLEXPORT_DB_PASSWORD")
	if err := env.OverrideInt(&c.Database.Port, "SQLEXPORT_DB_PORT"); err != nil {
		return err
	}
	if err := env.OverrideInt(&c.Export.MaxCells, "SQLEXPORT_MAX_CELLS"); err != nil {
		return err
	}
	if err := env.OverrideBool(&c.Export.TrimLeadingComments, "SQLEXPORT_TRIM_LEADING_COMMENTS"); err != nil {
		return err
	}
	return env.OverrideDuration(&c.Export.QueryTimeout, "SQLEXPORT_QUERY_TIMEOUT")
}

func (c Config) Validate() error {
	verr := &ValidationError{}

	c.Database.Type = strings.ToLower(strings.TrimSpace(c.Database.Type))
	switch c.Database.Type {
	case SQLite:
		if strings.TrimSpace(c.Database.Database) == "" {
			verr.Add("database.database (file path) is required for sqlite3")
		}
	case Postgres, Oracle, MSSQL:
		if strings.TrimSpace(c.Database.Host) == "" {
			verr.Add("database.host is required for " + c.Database.Type)
		}
		if strings.TrimSpace(c.Database.Database) == "" {
			verr.Add("database.database is required for " + c.Database.Type)
		}
	case "":
		verr.Add("database.type is required")
	default:
		verr.Add(fmt.Sprintf("database.type %q is not supported", c.Database.Type))
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		verr.Add("database.port must be between 0 and 65535")
	}
	if c.Database.PingTimeout <= 0 {
		verr.Add("database.ping_timeout must be positive")
	}

	if c.Export.MaxCells <= 0 {
		verr.Add("export.max_cells must be positive")
	}
	if c.Export.QueryTimeout < 0 {
		verr.Add("export.query_timeout must be >= 0")
	}
	if utf8.RuneCountInString(c.Export.Delimiter) != 1 {
		verr.Add("export.delimiter must be a single character")
	}
	if utf8.RuneCountInString(c.Export.Quote) != 1 {
		verr.Add("export.quote must be a single character")
	}
	if strings.ContainsAny(c.Export.Delimiter, "\r\n") {
		verr.Add("export.delimiter must not be a line break")
	}
	if strings.ContainsAny(c.Export.Quote, "\r\n") {
		verr.Add("export.quote must not be a line break")
	}
	if c.Export.Delimiter != "" && c.Export.Delimiter == c.Export.Quote {
		verr.Add("export.delimiter and export.quote must differ")
	}

	return verr.OrNil()
}

// DatabaseType is the normalized database.type.
func (c Config) DatabaseType() string {
	return strings.ToLower(strings.TrimSpace(c.Database.Type))
}

func (e Export) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(e.Delimiter)
	return r
}

func (e Export) QuoteRune() rune {
	r, _ := utf8.DecodeRuneInString(e.Quote)
	return r
}
