// Package api serves the daemon's HTTP endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matt-g-everett/ledmotion/internal/logger"
)

var log = logger.New("api")

// Health reports whether the daemon is ready.
type Health func() error

type Api struct {
	server *http.Server
}

// NewApi serves /metrics from gatherer and /healthz from health on listen.
// Either may be nil.
func NewApi(listen string, gatherer prometheus.Gatherer, health Health) *Api {
	a := new(Api)
	a.server = &http.Server{
		Addr:              listen,
		Handler:           Handler(gatherer, health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a
}

// Handler routes the API endpoints.
func Handler(gatherer prometheus.Gatherer, health Health) http.Handler {
	mux := http.NewServeMux()
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok\n"))
	})
	return mux
}

// Serve listens until ctx is done.
func (a *Api) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.server.Shutdown(shutdown)
	}()

	log.Info("Listening on %s", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
