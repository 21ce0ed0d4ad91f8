package executor

import "context"

// Column describes one result column.
type Column struct {
	Name         string
	DatabaseType string
}

// Cursor streams the rows of one submitted query.
type Cursor interface {
	Columns() []Column
	Next() bool
	// Values returns the current row, one value per column.
	Values() ([]any, error)
	Err() error
	// Close releases the cursor and ends the statement on the connection.
	Close() error
}

// Conn is the capability an Executor needs from an open database connection.
type Conn interface {
	Submit(ctx context.Context, query string) (Cursor, error)
	// Rollback aborts whatever the last Submit left open. It is a no-op when
	// nothing is open.
	Rollback(ctx context.Context) error
}
