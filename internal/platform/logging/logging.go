// Package logging builds the process logger: a stderr handler plus an
// optional Seq sink.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogseq "github.com/sokkalf/slog-seq"

	"github.com/animus-labs/sqlexport/internal/platform/env"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Level  string
	Format string
	// SeqURL enables shipping records to a Seq server when non-empty.
	SeqURL           string
	SeqFlushInterval time.Duration
}

func ConfigFromEnv() (Config, error) {
	flush, err := env.Duration("SQLEXPORT_SEQ_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Level:            env.String("SQLEXPORT_LOG_LEVEL", "info"),
		Format:           env.String("SQLEXPORT_LOG_FORMAT", FormatText),
		SeqURL:           env.String("SQLEXPORT_SEQ_URL", ""),
		SeqFlushInterval: flush,
	}, nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// New returns the logger and a close func that flushes the Seq sink.
func New(cfg Config, out io.Writer) (*slog.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		console = slog.NewTextHandler(out, opts)
	case FormatJSON:
		console = slog.NewJSONHandler(out, opts)
	default:
		return nil, nil, errors.New("log format must be text or json")
	}

	if strings.TrimSpace(cfg.SeqURL) == "" {
		return slog.New(console), func() {}, nil
	}

	flush := cfg.SeqFlushInterval
	if flush <= 0 {
		flush = 500 * time.Millisecond
	}
	_, seq := slogseq.NewLogger(
		cfg.SeqURL,
		slogseq.WithBatchSize(1),
		slogseq.WithFlushInterval(flush),
		slogseq.WithHandlerOptions(opts),
	)
	if seq == nil {
		return slog.New(console), func() {}, nil
	}

	logger := slog.New(&fanout{handlers: []slog.Handler{console, seq}})
	return logger, func() { seq.Close() }, nil
}

// fanout forwards each record to every handler.
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: handlers}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &fanout{handlers: handlers}
}
