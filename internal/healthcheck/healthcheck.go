package healthcheck

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/MyelinBots/heavenly-go/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// StartHealthcheck serves the health endpoint on its own port when HealthPort is set.
func StartHealthcheck(ctx context.Context, cfg config.AppConfig, db Pinger) *http.Server {
	if cfg.HealthPort <= 0 {
		return nil
	}
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HealthPort),
		Handler:           HealthCheckHandler(db),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Printf("[healthcheck] server error: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv
}

// HealthCheckHandler answers OK while the database responds to a ping.
func HealthCheckHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				log.Printf("[healthcheck] database ping failed: %v", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("DB UNAVAILABLE"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
