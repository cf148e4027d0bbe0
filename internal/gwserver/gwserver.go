// Package gwserver runs the gateway's dual listener (plain HTTP and
// TLS) and its signal-triggered graceful shutdown.
package gwserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"

	"github.com/latticegw/gatewayd/internal/gwapp"
)

const shutdownGracePeriod = 10 * time.Second

// Serve starts the HTTP listener, and the HTTPS listener if state.TLSConfig
// is set, and blocks until either a listener fails to start or the
// process receives an interrupt/termination signal. A second signal
// forces an immediate exit.
func Serve(state *gwapp.State) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", state.Config.HTTPPort),
		Handler: state.Handler(),
	}

	var httpsServer *http.Server
	if state.TLSConfig != nil {
		httpsServer = &http.Server{
			Addr:      fmt.Sprintf(":%d", state.Config.HTTPSPort),
			Handler:   state.Handler(),
			TLSConfig: state.TLSConfig,
		}
		if err := http2.ConfigureServer(httpsServer, &http2.Server{}); err != nil {
			return err
		}
	}

	group, ctx := errgroup.WithContext(context.Background())

	group.Go(func() error {
		state.Logger.Info("http listener starting", zap.String("addr", httpServer.Addr))
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if httpsServer != nil {
		group.Go(func() error {
			ln, err := net.Listen("tcp", httpsServer.Addr)
			if err != nil {
				return err
			}
			httpsListener := tls.NewListener(ln, httpsServer.TLSConfig)
			state.Logger.Info("https listener starting", zap.String("addr", httpsServer.Addr))
			err = httpsServer.Serve(httpsListener)
			if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		})
	}

	shutdownDone := make(chan struct{})
	go waitForSignal(ctx, state.Logger, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()

		state.Logger.Info("shutting down http listener")
		_ = httpServer.Shutdown(shutdownCtx)

		if httpsServer != nil {
			state.Logger.Info("closing https listener")
			_ = httpsServer.Close()
		}
		close(shutdownDone)
	})

	err := group.Wait()
	select {
	case <-shutdownDone:
	default:
	}
	return err
}

// waitForSignal blocks for SIGINT/SIGTERM or ctx cancellation (a
// listener failed to start), then runs shutdown. A second signal
// forces an immediate process exit, matching the teacher's legacy
// signal-trap convention.
func waitForSignal(ctx context.Context, log *zap.Logger, shutdown func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-ctx.Done():
		shutdown()
		return
	case <-sig:
	}

	log.Info("received interrupt, shutting down")
	go shutdown()

	select {
	case <-sig:
		log.Warn("received second interrupt, forcing exit")
		os.Exit(1)
	case <-time.After(shutdownGracePeriod + time.Second):
	}
}
