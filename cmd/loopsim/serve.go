package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/stream"
)

func newServeCmd() *cobra.Command {
	var (
		pf   paramFlags
		addr string
		rate float64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "stream runs to websocket clients at /ws",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, p, err := pf.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				c.Stream.Addr = addr
			}
			if cmd.Flags().Changed("rate") {
				c.Stream.Rate = rate
			}

			srv, err := stream.New(p, c.Stream.Rate, logger())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, c.Stream.Addr)
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "samples per second per client (default from config)")
	return cmd
}
