package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/animus-labs/sqlexport/internal/domain"
)

func TestNDJSONRecorder(t *testing.T) {
	var buf bytes.Buffer
	r := NewNDJSONRecorder(&buf)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	entries := []Entry{
		{RunID: "r1", Query: "a", State: domain.FileStateExported, Integrity: "valid", Rows: 3, Duration: 1500 * time.Millisecond, Outputs: []string{"a.csv", "a.xlsx"}, At: at},
		{RunID: "r1", Query: "b", State: domain.FileStateFailed, Err: errors.New("relation \"x\" does not exist"), At: at},
	}
	for _, e := range entries {
		if err := r.Record(context.Background(), e); err != nil {
			t.Fatalf("Record() err=%v", err)
		}
	}

	var got []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		got = append(got, m)
	}
	want := []map[string]any{
		{
			"run_id": "r1", "query": "a", "state": "exported", "integrity": "valid", "rows": float64(3),
			"truncated": false, "duration_ms": float64(1500), "outputs": []any{"a.csv", "a.xlsx"},
			"at": "2026-03-01T11:00:00Z",
		},
		{
			"run_id": "r1", "query": "b", "state": "failed", "rows": float64(0), "truncated": false,
			"duration_ms": float64(0), "error": `relation "x" does not exist`, "at": "2026-03-01T11:00:00Z",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestNoopRecorder(t *testing.T) {
	if err := (NoopRecorder{}).Record(context.Background(), Entry{}); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
}
