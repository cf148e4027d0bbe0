package gwapp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/latticegw/gatewayd/internal/rewrite"
)

// serveHTTP is the single entry point both the HTTP and HTTPS
// listeners dispatch to. It recognizes /healthz ahead of route-table
// lookup only when no proxy definition matches that path, so
// the route table itself stays pure per-definition data.
func (s *State) serveHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	if r.URL.Path == "/healthz" {
		if _, ok := s.Routes.Match("/healthz"); !ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
	}

	match, ok := s.Routes.Match(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Route Not Found"))
		s.Logger.Info("no route matched",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Int("status", http.StatusNotFound),
			zap.Duration("latency", time.Since(start)))
		return
	}

	client := s.Upstream.For(match.Definition.BackendProtocol)
	rewrite.Dispatch(w, r, match, client)

	s.Logger.Info("request served",
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
		zap.String("route_id", match.Definition.ID),
		zap.Duration("latency", time.Since(start)))
}
