package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillbridge/pkg/logging"
)

func newResolveCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "resolve <assessment-id>",
		Short:   "Resolve one assessment result and print it as JSON",
		Example: `  skillbridge resolve 3f2b8c1e-6a0d-4d8e-9a57-0c1f3e6b2d41`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			// the generator is never called here
			cfg.Generator = GeneratorNone

			logger := zap.NewNop()
			if verbose {
				if logger, err = newLogger(cfg); err != nil {
					return err
				}
				defer logger.Sync()
			}

			ctx := logging.WithLogger(cmd.Context(), logger)
			d, err := buildDeps(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer d.close()

			res := d.resolver.Resolve(ctx, args[0])

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"origin":     res.Origin,
				"assessment": res.Artifact,
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log resolver tiers to stderr")
	return cmd
}
