package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// Store is the subset of *minio.Client the publisher uses.
type Store interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher copies finished files into a bucket under <prefix>/<run id>/.
type Publisher struct {
	store   Store
	bucket  string
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewPublisher(store Store, cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:   store,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		timeout: 10 * time.Minute,
		logger:  logger,
	}
}

func (p *Publisher) Key(runID, file string) string {
	return path.Join(p.prefix, runID, filepath.Base(file))
}

// Publish uploads files in order and returns their object keys. It stops at
// the first failure.
func (p *Publisher) Publish(ctx context.Context, runID string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		key := p.Key(runID, file)
		if err := p.put(ctx, file, key); err != nil {
			return keys, fmt.Errorf("publish %s: %w", file, err)
		}
		p.logger.Info("published", "file", file, "bucket", p.bucket, "key", key)
		keys = append(keys, key)
	}
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	putCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	_, err = p.store.PutObject(putCtx, p.bucket, key, f, info.Size(),
		minio.PutObjectOptions{ContentType: contentType(file)})
	return err
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ndjson":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
