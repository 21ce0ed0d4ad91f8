// Command sqlexport runs a directory of read-only SQL files and exports each
// result as delimited text and a spreadsheet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/animus-labs/sqlexport/internal/config"
	"github.com/animus-labs/sqlexport/internal/platform/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configErr(err error) error  { return &exitError{code: exitConfig, err: err} }
func runtimeErr(err error) error { return &exitError{code: exitRuntime, err: err} }

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	stderr     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(stderr, "error:", ee.err)
		return ee.code
	}
	// Flag and argument errors from cobra itself.
	fmt.Fprintln(stderr, "error:", err)
	return exitConfig
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stderr: stderr}
	root := &cobra.Command{
		Use:           "sqlexport",
		Short:         "Export the results of approved read-only SQL files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFile, "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newRunCmd(opts), newChecksumCmd(opts), newCheckCmd(opts))
	return root
}

// load reads the config file; it must exist only when --config was given.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configPath, required)
	if err != nil {
		return config.Config{}, configErr(err)
	}
	return cfg, nil
}

func (o *rootOptions) logger() (*slog.Logger, func(), error) {
	cfg, err := logging.ConfigFromEnv()
	if err != nil {
		return nil, nil, configErr(err)
	}
	if o.logLevel != "" {
		cfg.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Format = o.logFormat
	}
	logger, closeFn, err := logging.New(cfg, o.stderr)
	if err != nil {
		return nil, nil, configErr(err)
	}
	return logger, closeFn, nil
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
