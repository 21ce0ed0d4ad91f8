package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/sqlexport/internal/integrity"
	"github.com/animus-labs/sqlexport/internal/source"
)

func newChecksumCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checksum [dir]",
		Short: "Write a .hash record for every .sql file in dir",
		Long: "Approves the current text of every .sql file by writing <name>.hash " +
			"beside it, salted with hash_salt from the config.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if !integrity.Enabled(cfg.HashSalt) {
				return configErr(errors.New("hash_salt is empty, refusing to write unsalted records"))
			}

			sources, err := source.Scan(dirArg(args))
			if err != nil {
				return runtimeErr(err)
			}
			out := cmd.OutOrStdout()
			for _, src := range sources {
				digest := integrity.Digest(src.Text, cfg.HashSalt)
				if err := integrity.WriteRecord(source.HashPath(src.Path), digest); err != nil {
					return runtimeErr(err)
				}
				fmt.Fprintf(out, "%s  %s\n", digest, src.Name)
			}
			return nil
		},
	}
}
