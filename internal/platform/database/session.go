package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/animus-labs/sqlexport/internal/executor"
)

// Session pins one connection and runs every submitted query in its own
// transaction, which is always rolled back.
type Session struct {
	conn   *sql.Conn
	engine string
	tx     *sql.Tx
}

var _ executor.Conn = (*Session)(nil)

func NewSession(ctx context.Context, db *sql.DB, engine string) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, engine: strings.ToLower(engine)}, nil
}

func (s *Session) Submit(ctx context.Context, query string) (executor.Cursor, error) {
	if err := s.Rollback(ctx); err != nil {
		return nil, err
	}

	// Only PostgreSQL enforces READ ONLY; other drivers reject the option.
	tx, err := s.conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: s.engine == Postgres})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	s.tx = tx

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("column types: %w", err)
	}

	cols := make([]executor.Column, len(types))
	for i, ct := range types {
		cols[i] = executor.Column{Name: ct.Name(), DatabaseType: s.databaseType(ct)}
	}
	return &cursor{session: s, rows: rows, cols: cols}, nil
}

func (s *Session) databaseType(ct *sql.ColumnType) string {
	name := strings.ToUpper(ct.DatabaseTypeName())
	// Oracle DATE carries a time of day.
	if s.engine == Oracle && name == "DATE" {
		return "TIMESTAMP"
	}
	// SQLite REAL is an 8-byte float.
	if s.engine == SQLite && name == "REAL" {
		return "DOUBLE"
	}
	return name
}

func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	_ = s.Rollback(context.Background())
	return s.conn.Close()
}

type cursor struct {
	session *Session
	rows    *sql.Rows
	cols    []executor.Column
	closed  bool
}

func (c *cursor) Columns() []executor.Column { return c.cols }

func (c *cursor) Next() bool { return c.rows.Next() }

func (c *cursor) Values() ([]any, error) {
	values := make([]any, len(c.cols))
	dest := make([]any, len(c.cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return values, nil
}

func (c *cursor) Err() error { return c.rows.Err() }

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rows.Close()
	if rbErr := c.session.Rollback(context.Background()); err == nil {
		err = rbErr
	}
	return err
}
