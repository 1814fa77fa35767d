// Package statusapi is the small supervision surface exposed while serve
// mode runs. The inference API itself belongs to the engine process; this
// router only answers liveness, a status snapshot, and metrics.
package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Probe reports whether the engine answers its health endpoint.
type Probe func() bool

// Info is the static part of the status snapshot.
type Info struct {
	Model     string `json:"model"`
	Quant     string `json:"quant"`
	ModelPath string `json:"model_path"`
	EngineURL string `json:"engine_url"`
}

type statusResponse struct {
	Info
	Engine        string  `json:"engine"` // "ok" | "unreachable"
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewRouter builds the sidecar router.
func NewRouter(info Info, probe Probe, log zerolog.Logger) http.Handler {
	start := time.Now()
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Use(requestLogger(log))
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		resp := statusResponse{Info: info, Engine: "unreachable", UptimeSeconds: time.Since(start).Seconds()}
		if probe != nil && probe() {
			resp.Engine = "ok"
			engineUp.Set(1)
		} else {
			engineUp.Set(0)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Serve runs the sidecar until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("status sidecar listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("dur", time.Since(start)).
				Msg("sidecar request")
		})
	}
}
