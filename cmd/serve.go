package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/api"
	"github.com/MyelinBots/heavenly-go/internal/app"
	"github.com/MyelinBots/heavenly-go/internal/healthcheck"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with its background workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := app.Open(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			a, err := app.New(cfg, database)
			if err != nil {
				return err
			}
			a.Start(ctx)
			defer a.Stop()

			healthcheck.StartHealthcheck(ctx, cfg.AppConfig, database)

			srv := &http.Server{
				Addr:              ":" + strconv.Itoa(cfg.AppConfig.Port),
				Handler:           api.NewRouter(cfg.AppConfig, a.Services),
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				log.Printf("[serve] %s %s listening on %s", cfg.AppConfig.APPName, cfg.AppConfig.Version, srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			log.Printf("[serve] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
