package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/animus-labs/sqlexport/internal/batch"
	"github.com/animus-labs/sqlexport/internal/config"
	"github.com/animus-labs/sqlexport/internal/executor"
	"github.com/animus-labs/sqlexport/internal/export"
	"github.com/animus-labs/sqlexport/internal/platform/database"
	"github.com/animus-labs/sqlexport/internal/platform/objectstore"
	"github.com/animus-labs/sqlexport/internal/report"
	"github.com/animus-labs/sqlexport/internal/safety"
	"github.com/animus-labs/sqlexport/internal/source"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Verify, execute and export every .sql file in dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Export.OutputDir = outputDir
			}
			if err := cfg.Validate(); err != nil {
				return configErr(err)
			}
			logger, closeLog, err := opts.logger()
			if err != nil {
				return err
			}
			defer closeLog()
			return runBatch(cmd.Context(), logger, cfg, dirArg(args))
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "write exports here instead of beside each query")
	return cmd
}

func databaseConfig(cfg config.Config) database.Config {
	return database.Config{
		Type:        cfg.DatabaseType(),
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		Database:    cfg.Database.Database,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		SSLMode:     cfg.Database.SSLMode,
		PingTimeout: cfg.Database.PingTimeout,
	}
}

func runBatch(ctx context.Context, logger *slog.Logger, cfg config.Config, dir string) error {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	storeCfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		return configErr(fmt.Errorf("object store config: %w", err))
	}

	sources, err := source.Scan(dir)
	if err != nil {
		return runtimeErr(err)
	}
	if out := cfg.Export.OutputDir; out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return runtimeErr(fmt.Errorf("create output dir: %w", err))
		}
	}

	var publisher *objectstore.Publisher
	if storeCfg.Enabled {
		client, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			return configErr(fmt.Errorf("object store client: %w", err))
		}
		if err := objectstore.EnsureBucket(ctx, client, storeCfg); err != nil {
			return runtimeErr(fmt.Errorf("object store unavailable: %w", err))
		}
		publisher = objectstore.NewPublisher(client, storeCfg, logger)
	}

	dbCfg := databaseConfig(cfg)
	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		return runtimeErr(fmt.Errorf("database unavailable: %w", err))
	}
	defer func() { _ = db.Close() }()
	session, err := database.NewSession(ctx, db, dbCfg.Type)
	if err != nil {
		return runtimeErr(err)
	}
	defer func() { _ = session.Close() }()
	logger.Info("connected", "type", dbCfg.Type, "host", dbCfg.Host, "database", dbCfg.Database)

	var recorder report.Recorder = report.NoopRecorder{}
	if path := cfg.Export.ReportFile; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return runtimeErr(fmt.Errorf("create report dir: %w", err))
		}
		f, err := os.Create(path)
		if err != nil {
			return runtimeErr(fmt.Errorf("create report: %w", err))
		}
		defer func() { _ = f.Close() }()
		recorder = report.NewNDJSONRecorder(f)
	}

	text := export.NewDelimitedWriter()
	text.Delimiter = cfg.Export.DelimiterRune()
	text.Quote = cfg.Export.QuoteRune()

	runner := batch.New(logger, executor.New(logger, cfg.Export.QueryTimeout), batch.Config{
		RunID:      runID,
		Salt:       cfg.HashSalt,
		MaxCells:   cfg.Export.MaxCells,
		Classifier: safety.Classifier{TrimLeading: cfg.Export.TrimLeadingComments},
		Text:       text,
		OutputDir:  cfg.Export.OutputDir,
		Recorder:   recorder,
	})
	summary, runErr := runner.Run(ctx, session, sources)
	if runErr != nil {
		return runtimeErr(runErr)
	}

	if publisher != nil {
		files := summary.Outputs()
		if cfg.Export.ReportFile != "" {
			files = append(files, cfg.Export.ReportFile)
		}
		if _, err := publisher.Publish(ctx, runID, files); err != nil {
			return runtimeErr(err)
		}
	}
	return nil
}
