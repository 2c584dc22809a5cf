// Command dreamsearch renders structured search queries on the terminal
// and serves them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/dreamsearch/internal/logging"
)

// rootOptions carries state shared by all subcommands.
type rootOptions struct {
	logLevel   string
	configPath string
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dreamsearch",
		Short: "Render structured search queries",
		Long: `dreamsearch parses search queries such as

  !level:error browser:[chrome, firefox] (age:>-24h OR is:unresolved)

and renders them as highlighted text, HTML or structured units.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "dreamsearch.yaml", "path to the YAML config file")

	cmd.AddCommand(
		newRenderCmd(opts),
		newUnitsCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
