// Package report records one entry per processed query file.
package report

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/animus-labs/sqlexport/internal/domain"
)

// Entry is the outcome of one query file within a run.
type Entry struct {
	RunID     string
	Query     string
	State     domain.FileState
	Integrity string
	Rows      int
	Truncated bool
	Duration  time.Duration
	Outputs   []string
	Err       error
	At        time.Time
}

// Recorder receives entries as files finish.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, entry Entry) error {
	return nil
}

// NDJSONRecorder writes entries as newline-delimited JSON.
type NDJSONRecorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewNDJSONRecorder(w io.Writer) *NDJSONRecorder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONRecorder{enc: enc}
}

func (r *NDJSONRecorder) Record(ctx context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(recordFromEntry(entry))
}

type record struct {
	RunID      string   `json:"run_id"`
	Query      string   `json:"query"`
	State      string   `json:"state"`
	Integrity  string   `json:"integrity,omitempty"`
	Rows       int      `json:"rows"`
	Truncated  bool     `json:"truncated"`
	DurationMS int64    `json:"duration_ms"`
	Outputs    []string `json:"outputs,omitempty"`
	Error      string   `json:"error,omitempty"`
	At         string   `json:"at"`
}

func recordFromEntry(e Entry) record {
	rec := record{
		RunID:      e.RunID,
		Query:      e.Query,
		State:      string(e.State),
		Integrity:  e.Integrity,
		Rows:       e.Rows,
		Truncated:  e.Truncated,
		DurationMS: e.Duration.Milliseconds(),
		Outputs:    e.Outputs,
		At:         e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}
	return rec
}
