package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/sqlexport/internal/batch"
	"github.com/animus-labs/sqlexport/internal/safety"
	"github.com/animus-labs/sqlexport/internal/source"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Report which .sql files would be skipped or rejected, without a database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sources, err := source.Scan(dirArg(args))
			if err != nil {
				return runtimeErr(err)
			}

			runner := batch.New(nil, nil, batch.Config{
				Salt:       cfg.HashSalt,
				Classifier: safety.Classifier{TrimLeading: cfg.Export.TrimLeadingComments},
			})
			out := cmd.OutOrStdout()
			failed := 0
			for _, res := range runner.Check(sources) {
				if res.OK() {
					fmt.Fprintf(out, "ok    %s\n", res.Name)
					continue
				}
				failed++
				fmt.Fprintf(out, "FAIL  %s: %v\n", res.Name, res.Err())
			}
			if failed > 0 {
				return runtimeErr(fmt.Errorf("%d of %d files would not run", failed, len(sources)))
			}
			return nil
		},
	}
}
