// Command kgtree is the CLI for the tree/Opath/diff library: parse a
// document, query it with an Opath expression, diff two documents, resolve
// interpolation templates, or run the query server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/pkg/config"
	"github.com/kodegenix/kgtree/pkg/treelog"
)

const formatJSON = "json"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliContext carries what every subcommand needs: loaded configuration and
// the process logger.
type cliContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	var configPath string

	ctx := &cliContext{}

	cmd := &cobra.Command{
		Use:           "kgtree",
		Short:         "Generic tree model with Opath queries and structural diff",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			ctx.cfg = cfg
			ctx.logger = newLogger(cfg.Logging)

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	cmd.AddCommand(parseCmd(ctx))
	cmd.AddCommand(queryCmd(ctx))
	cmd.AddCommand(diffCmd(ctx))
	cmd.AddCommand(resolveCmd(ctx))
	cmd.AddCommand(serveCmd(ctx))

	return cmd
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	out := os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	return treelog.New(cfg.Level, cfg.Format, out)
}
