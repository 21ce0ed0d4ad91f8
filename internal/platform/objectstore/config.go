package objectstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/animus-labs/sqlexport/internal/platform/env"
)

type Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

func ConfigFromEnv() (Config, error) {
	enabled, err := env.Bool("SQLEXPORT_PUBLISH_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	useSSL, err := env.Bool("SQLEXPORT_MINIO_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Enabled:   enabled,
		Endpoint:  env.String("SQLEXPORT_MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: env.String("SQLEXPORT_MINIO_ACCESS_KEY", ""),
		SecretKey: env.String("SQLEXPORT_MINIO_SECRET_KEY", ""),
		Region:    env.String("SQLEXPORT_MINIO_REGION", "us-east-1"),
		UseSSL:    useSSL,
		Bucket:    env.String("SQLEXPORT_MINIO_BUCKET", "exports"),
		Prefix:    env.String("SQLEXPORT_MINIO_PREFIX", "sqlexport"),
	}
	if !cfg.Enabled {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
