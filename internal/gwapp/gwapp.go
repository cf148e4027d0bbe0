// Package gwapp holds AppState, the immutable set of collaborators
// built once at startup and shared, read-only, across every
// goroutine serving a connection — no locking required.
package gwapp

import (
	"crypto/tls"
	"net/http"

	"go.uber.org/zap"

	"github.com/latticegw/gatewayd/internal/gwconfig"
	"github.com/latticegw/gatewayd/internal/routetable"
	"github.com/latticegw/gatewayd/internal/upstream"
)

// State is the gateway's shared, read-only application state.
type State struct {
	Config    gwconfig.ServerConfig
	Routes    *routetable.Table
	Upstream  *upstream.Pool
	TLSConfig *tls.Config
	Logger    *zap.Logger
}

// Handler returns the http.HandlerFunc dispatching every inbound
// request through the route table and the rewriter.
func (s *State) Handler() http.HandlerFunc {
	return s.serveHTTP
}
