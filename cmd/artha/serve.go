package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"arthagpt/internal/handler"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.useJSONLogs()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := c.application(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			server := handler.NewApp(c.cfg.Server, app.svc, app.quotes)

			st := app.svc.Stats()
			c.logger.Info("starting ArthaGPT",
				"addr", addr,
				"documents", st.Documents,
				"chunks", st.Chunks,
				"providers", st.Providers,
				"live_market", st.LiveMarket,
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				c.logger.Info("shutting down")
				return server.ShutdownWithTimeout(10 * time.Second)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
