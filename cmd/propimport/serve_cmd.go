package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload API over HTTP",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pol, err := ingest.ParseCommitPolicy(a.cfg.CommitPolicy)
			if err != nil {
				return usageError(err)
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("addr") {
				a.cfg.HTTPAddr = addr
			}
			var opts []server.Option
			if a.metricsHandler != nil {
				opts = append(opts, server.WithMetricsHandler(a.metricsHandler))
			}
			srv := server.New(server.Config{
				Addr:            a.cfg.HTTPAddr,
				MaxUploadBytes:  a.cfg.MaxUploadBytes,
				SessionTTL:      a.cfg.SessionTTL,
				SessionCapacity: a.cfg.SessionCapacity,
				ShutdownTimeout: a.cfg.ShutdownTimeout,
			}, a.log, func() *ingest.Session {
				return ingest.NewSession(a.pipeline(), a.committer(store, pol))
			}, opts...)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env PROPIMPORT_HTTP_ADDR)")
	return cmd
}
