// Package batch drives query files through integrity, safety, execution and
// export, one file at a time on a single connection.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/animus-labs/sqlexport/internal/domain"
	"github.com/animus-labs/sqlexport/internal/executor"
	"github.com/animus-labs/sqlexport/internal/export"
	"github.com/animus-labs/sqlexport/internal/integrity"
	"github.com/animus-labs/sqlexport/internal/report"
	"github.com/animus-labs/sqlexport/internal/safety"
)

type Config struct {
	RunID      string
	Salt       string
	MaxCells   int
	Classifier safety.Classifier
	Text       export.DelimitedWriter
	// OutputDir receives the exports; empty writes them beside each query.
	OutputDir string
	Recorder  report.Recorder
}

type Runner struct {
	logger   *slog.Logger
	executor *executor.Executor
	cfg      Config
	now      func() time.Time
}

func New(logger *slog.Logger, ex *executor.Executor, cfg Config) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = report.NoopRecorder{}
	}
	return &Runner{
		logger:   logger.With("run_id", cfg.RunID),
		executor: ex,
		cfg:      cfg,
		now:      time.Now,
	}
}

// FileResult is what happened to one query file.
type FileResult struct {
	Name      string
	State     domain.FileState
	Integrity integrity.Outcome
	Rows      int
	Truncated bool
	Duration  time.Duration
	Outputs   []string
	Err       error
}

type Summary struct {
	RunID string
	Files []FileResult
}

func (s Summary) Count(state domain.FileState) int {
	n := 0
	for _, f := range s.Files {
		if f.State == state {
			n++
		}
	}
	return n
}

// Outputs lists every file written during the run, in order.
func (s Summary) Outputs() []string {
	var out []string
	for _, f := range s.Files {
		out = append(out, f.Outputs...)
	}
	return out
}

// Run processes sources in order. Skipped, failed and empty files do not stop
// the batch; an unsafe query or an export failure does, and is returned.
func (r *Runner) Run(ctx context.Context, conn executor.Conn, sources []domain.QuerySource) (Summary, error) {
	summary := Summary{RunID: r.cfg.RunID}
	if !integrity.Enabled(r.cfg.Salt) {
		r.logger.Warn("hash salt is empty, integrity checking disabled")
	}
	r.logger.Info("batch started", "files", len(sources), "max_cells", r.cfg.MaxCells)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res := r.process(ctx, conn, src)
		summary.Files = append(summary.Files, res)
		r.record(ctx, res)

		if !res.State.Continues() {
			r.logger.Error("batch aborted", "query", src.Name, "state", res.State, "error", res.Err)
			return summary, fmt.Errorf("%s: %w", src.Name, res.Err)
		}
	}

	r.logger.Info("batch finished",
		"files", len(summary.Files),
		"exported", summary.Count(domain.FileStateExported),
		"skipped", summary.Count(domain.FileStateSkipped),
		"failed", summary.Count(domain.FileStateFailed),
		"empty", summary.Count(domain.FileStateEmpty),
	)
	return summary, nil
}

func (r *Runner) process(ctx context.Context, conn executor.Conn, src domain.QuerySource) FileResult {
	logger := r.logger.With("query", src.Name)
	res := FileResult{Name: src.Name}
	dir := r.outputDir(src)

	if err := export.RemoveOutputs(dir, src.Name); err != nil {
		res.State = domain.FileStateExportFailed
		res.Err = err
		return res
	}

	res.Integrity = integrity.Verify(src.Text, src.Hash, r.cfg.Salt)
	if res.Integrity != integrity.Valid {
		logger.Warn("integrity check failed, skipping", "integrity", res.Integrity)
		res.State = domain.FileStateSkipped
		res.Err = res.Integrity.Err()
		return res
	}

	verdict := r.cfg.Classifier.Classify(src.Text)
	if !verdict.Allowed() {
		logger.Error("query rejected", "reason", verdict.Reason, "keyword", verdict.Keyword, "snippet", verdict.Snippet)
		res.State = domain.FileStateRejected
		res.Err = verdict.Err()
		return res
	}

	result := r.executor.Execute(ctx, conn, src.Text, r.cfg.MaxCells)
	res.Duration = result.Duration
	res.Rows = result.Table.Len()
	res.Truncated = result.Status == executor.StatusTruncated
	if result.Status == executor.StatusFailed {
		res.State = domain.FileStateFailed
		res.Err = result.Err
		return res
	}
	logger.Info("query executed", "rows", res.Rows, "columns", result.Table.Columns(),
		"truncated", res.Truncated, "duration", res.Duration)

	if res.Rows == 0 {
		logger.Info("no data rows, nothing exported")
		res.State = domain.FileStateEmpty
		return res
	}

	exporter := export.NewExporter(dir, r.cfg.Text)
	outputs, err := exporter.Export(src.Name, result.Table)
	res.Outputs = outputs
	if err != nil {
		res.State = domain.FileStateExportFailed
		res.Err = err
		return res
	}
	logger.Info("exported", "outputs", outputs)
	res.State = domain.FileStateExported
	return res
}

func (r *Runner) outputDir(src domain.QuerySource) string {
	if r.cfg.OutputDir != "" {
		return r.cfg.OutputDir
	}
	return filepath.Dir(src.Path)
}

func (r *Runner) record(ctx context.Context, res FileResult) {
	entry := report.Entry{
		RunID:     r.cfg.RunID,
		Query:     res.Name,
		State:     res.State,
		Integrity: string(res.Integrity),
		Rows:      res.Rows,
		Truncated: res.Truncated,
		Duration:  res.Duration,
		Outputs:   res.Outputs,
		Err:       res.Err,
		At:        r.now(),
	}
	if err := r.cfg.Recorder.Record(ctx, entry); err != nil {
		r.logger.Error("record report entry", "query", res.Name, "error", err)
	}
}

// CheckResult is the dry-run verdict for one file.
type CheckResult struct {
	Name      string
	Integrity integrity.Outcome
	Verdict   safety.Verdict
}

func (c CheckResult) OK() bool {
	return c.Integrity == integrity.Valid && c.Verdict.Allowed()
}

func (c CheckResult) Err() error {
	if c.Integrity != integrity.Valid {
		return c.Integrity.Err()
	}
	return c.Verdict.Err()
}

// Check runs the integrity and safety gates without a database.
func (r *Runner) Check(sources []domain.QuerySource) []CheckResult {
	results := make([]CheckResult, 0, len(sources))
	for _, src := range sources {
		res := CheckResult{
			Name:      src.Name,
			Integrity: integrity.Verify(src.Text, src.Hash, r.cfg.Salt),
		}
		if res.Integrity == integrity.Valid {
			res.Verdict = r.cfg.Classifier.Classify(src.Text)
		}
		results = append(results, res)
	}
	return results
}
