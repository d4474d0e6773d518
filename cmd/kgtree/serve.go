package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/internal/rpcserver"
)

func serveCmd(cli *cliContext) *cobra.Command {
	var stdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Opath query server",
		Long: `Run the query server: newline-delimited JSON requests of the form
{"root": <document>, "expr": "<opath>"} answered with {"result": <nodeset>}.

Examples:
  kgtree serve                 # Listen on the configured host/port
  kgtree serve --stdio         # Serve a single session over stdin/stdout`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(cli, stdio)
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve over stdin/stdout instead of TCP")

	return cmd
}

func runServe(cli *cliContext, stdio bool) error {
	srv := rpcserver.New(cli.logger, rpcserver.Options{
		ReadTimeout:  cli.cfg.Server.ReadTimeout,
		WriteTimeout: cli.cfg.Server.WriteTimeout,
	})

	if stdio {
		return srv.ServeStdio(os.Stdin, os.Stdout)
	}

	addr := fmt.Sprintf("%s:%d", cli.cfg.Server.Host, cli.cfg.Server.Port)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	cli.logger.Info("query server listening", "addr", addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, lis)
}
