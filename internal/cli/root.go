// Package cli implements annotatectl, the maintenance CLI for the annotation
// service: bulk seeding, progress reports and exports.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the annotatectl command tree.
func NewRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "annotatectl",
		Short:         "Maintenance CLI for the clip annotation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ctx.logger != nil {
				_ = ctx.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log every step to stderr")

	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}
