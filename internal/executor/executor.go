// Package executor runs one validated query on an open connection and
// collects its rows under a cell ceiling.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/animus-labs/sqlexport/internal/domain"
)

type Status string

const (
	StatusComplete  Status = "complete"
	StatusTruncated Status = "truncated"
	StatusFailed    Status = "failed"
)

// Result is the outcome of one Execute call. A truncated result holds the
// rows read before the ceiling was crossed; a failed result holds an empty
// table and the error in Err.
type Result struct {
	Status   Status
	Table    *domain.Table
	Ceiling  int
	Duration time.Duration
	Err      error
}

// ExecutionError wraps a driver failure (syntax, permission, connectivity,
// timeout) for one query.
type ExecutionError struct {
	Snippet string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Snippet, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

var ErrTimeout = errors.New("query timeout exceeded")

type Executor struct {
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// New returns an Executor. A positive timeout bounds each query.
func New(logger *slog.Logger, timeout time.Duration) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Execute streams the query's rows into a Table. It never returns a Go error:
// failures are rolled back, logged and reported through Result.
//
// Each row adds its column count to a running cell total; once the total
// exceeds ceiling, reading stops and the rows gathered so far are returned as
// StatusTruncated. A ceiling <= 0 disables the limit.
func (e *Executor) Execute(ctx context.Context, conn Conn, query string, ceiling int) Result {
	start := e.now()
	res := e.execute(ctx, conn, query, ceiling)
	res.Ceiling = ceiling
	res.Duration = e.now().Sub(start)
	return res
}

func (e *Executor) execute(ctx context.Context, conn Conn, query string, ceiling int) Result {
	snippet := domain.Snippet(query, 80)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cur, err := conn.Submit(ctx, query)
	if err != nil {
		return e.fail(ctx, conn, nil, snippet, err)
	}

	cols := cur.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	table := domain.NewTable(names)
	width := len(cols)

	cells := 0
	for cur.Next() {
		cells += width
		if ceiling > 0 && cells > ceiling {
			e.logger.Warn("too many values, stopped reading",
				"max_cells", ceiling,
				"rows", table.Len(),
				"columns", width,
				"snippet", snippet,
			)
			_ = cur.Close()
			return Result{Status: StatusTruncated, Table: table}
		}

		values, err := cur.Values()
		if err != nil {
			return e.fail(ctx, conn, cur, snippet, err)
		}
		row := make([]domain.Cell, len(values))
		for i, v := range values {
			dbType := ""
			if i < width {
				dbType = cols[i].DatabaseType
			}
			row[i] = domain.CellFromDriver(v, dbType)
		}
		if err := table.Append(row); err != nil {
			return e.fail(ctx, conn, cur, snippet, err)
		}
	}
	if err := cur.Err(); err != nil {
		return e.fail(ctx, conn, cur, snippet, err)
	}
	if err := cur.Close(); err != nil {
		return e.fail(ctx, conn, nil, snippet, err)
	}
	return Result{Status: StatusComplete, Table: table}
}

func (e *Executor) fail(ctx context.Context, conn Conn, cur Cursor, snippet string, cause error) Result {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		cause = fmt.Errorf("%w (%s): %w", ErrTimeout, e.timeout, cause)
	}
	if cur != nil {
		_ = cur.Close()
	}
	// The statement context may already be done; rollback must still reach
	// the server.
	if err := conn.Rollback(context.WithoutCancel(ctx)); err != nil {
		e.logger.Error("rollback failed", "snippet", snippet, "error", err)
	}
	execErr := &ExecutionError{Snippet: snippet, Err: cause}
	e.logger.Error("query failed", "snippet", snippet, "error", cause)
	return Result{Status: StatusFailed, Table: &domain.Table{}, Err: execErr}
}
