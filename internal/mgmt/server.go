// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mgmt

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"grimm.is/flywall/internal/errors"
	"grimm.is/flywall/internal/logging"
)

// Server exposes Store over HTTP: GET /snapshot returns the current
// Snapshot as JSON, GET /healthz is a liveness probe, GET /metrics
// delegates to promhttp. It never accepts writes.
type Server struct {
	store  *Store
	logger *logging.Logger
	http   *http.Server
}

// NewServer builds a Server bound to addr (host:port). /metrics serves the
// default prometheus registry through promhttp.Handler().
func NewServer(addr string, store *Store, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	logger = logger.WithComponent("mgmt")

	router := mux.NewRouter()
	s := &Server{store: store, logger: logger}
	router.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Warn("encode snapshot response failed", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Serve listens and blocks until ctx is canceled or the listener fails.
// It is meant to run on its own goroutine; the daemon's main loop does
// not depend on it.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrapf(err, errors.KindIOFatal, "bind management listener on %s", s.http.Addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, errors.KindIOFatal, "management server stopped")
	}
}
