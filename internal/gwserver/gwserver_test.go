package gwserver

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/latticegw/gatewayd/internal/gwapp"
	"github.com/latticegw/gatewayd/internal/gwconfig"
	"github.com/latticegw/gatewayd/internal/routetable"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestServe_ReturnsErrorWhenHTTPPortAlreadyBound(t *testing.T) {
	port := freePort(t)
	blocker, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	require.NoError(t, err)
	defer blocker.Close()

	routes, err := routetable.Build(nil)
	require.NoError(t, err)

	state := &gwapp.State{
		Config: gwconfig.ServerConfig{HTTPPort: port, HTTPSPort: freePort(t)},
		Logger: zaptest.NewLogger(t),
		Routes: routes,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- Serve(state) }()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after a listener bind failure")
	}
}
