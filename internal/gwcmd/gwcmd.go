// Package gwcmd wires the gateway's cobra command tree: a root
// command plus "run" and "version" subcommands, the way the teacher's
// cmd package builds a root command around its own subcommands.
package gwcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/latticegw/gatewayd/internal/gwapp"
	"github.com/latticegw/gatewayd/internal/gwconfig"
	"github.com/latticegw/gatewayd/internal/gwlog"
	"github.com/latticegw/gatewayd/internal/gwserver"
	"github.com/latticegw/gatewayd/internal/gwtls"
	"github.com/latticegw/gatewayd/internal/proxydef"
	"github.com/latticegw/gatewayd/internal/routetable"
	"github.com/latticegw/gatewayd/internal/upstream"
)

// version is set by the release build process; left as a placeholder
// default for source builds.
var version = "dev"

// Root builds the gateway's root cobra command.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "gatewayd",
		Short: "A declarative reverse proxy gateway",
	}
	root.AddCommand(runCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gatewayd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load configuration and serve until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	log, err := gwlog.New()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := gwconfig.Load(log)
	if err != nil {
		log.Error("failed to load configuration", zap.Error(err))
		return err
	}

	defs, err := proxydef.Load(cfg.ProxyConfigPath)
	if err != nil {
		log.Error("failed to load proxy definitions", zap.Error(err))
		return err
	}

	routes, err := routetable.Build(defs)
	if err != nil {
		log.Error("failed to build route table", zap.Error(err))
		return err
	}

	pool, err := upstream.Build(proxydef.AnySkipsCertificateVerification(defs))
	if err != nil {
		log.Error("failed to build outbound client pool", zap.Error(err))
		return err
	}

	state := &gwapp.State{
		Config:   cfg,
		Routes:   routes,
		Upstream: pool,
		Logger:   log,
	}

	if cfg.TLSEnabled() {
		tc, err := gwtls.Build(cfg.TLSCertPath, cfg.TLSKeyPath)
		if err != nil {
			log.Error("failed to build TLS configuration", zap.Error(err))
			return err
		}
		state.TLSConfig = tc
	}

	log.Info("gatewayd starting",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("https_port", cfg.HTTPSPort),
		zap.Bool("tls_enabled", cfg.TLSEnabled()),
		zap.Int("routes", len(defs)),
	)

	return gwserver.Serve(state)
}
