// Package gwconfig loads the gateway's process-level configuration
// from the environment, the way the original ServerConfig::from_env
// did, plus an optional .env file the teacher's pack convention adds.
package gwconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/latticegw/gatewayd/internal/gwerrors"
)

const (
	defaultHTTPPort  = 8080
	defaultHTTPSPort = 8443
)

// ServerConfig is the process-level configuration the gateway needs
// before it can build a route table or start listening.
type ServerConfig struct {
	HTTPPort        int
	HTTPSPort       int
	TLSCertPath     string
	TLSKeyPath      string
	ProxyConfigPath string
}

// TLSEnabled reports whether both TLS cert and key paths were
// configured.
func (c ServerConfig) TLSEnabled() bool {
	return c.TLSCertPath != "" && c.TLSKeyPath != ""
}

// Load reads a .env file in the working directory if present, then
// builds a ServerConfig from the environment. log receives warnings
// for malformed port values falling back to their default.
func Load(log *zap.Logger) (ServerConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("failed reading .env file", zap.Error(err))
	}

	cfg := ServerConfig{
		HTTPPort:    parsePort(log, "HTTP_PORT", defaultHTTPPort),
		HTTPSPort:   parsePort(log, "HTTPS_PORT", defaultHTTPSPort),
		TLSCertPath: os.Getenv("TLS_CERT_PATH"),
		TLSKeyPath:  os.Getenv("TLS_KEY_PATH"),
	}

	cfg.ProxyConfigPath = os.Getenv("PROXY_CONFIG_PATH")
	if cfg.ProxyConfigPath == "" {
		return ServerConfig{}, gwerrors.New(gwerrors.Config, "PROXY_CONFIG_PATH is required")
	}
	if _, err := os.Stat(cfg.ProxyConfigPath); err != nil {
		return ServerConfig{}, gwerrors.Wrap(gwerrors.Config, "PROXY_CONFIG_PATH does not exist", err)
	}

	return cfg, nil
}

// parsePort reads name from the environment, falling back to def and
// logging a warning if the value is present but not a valid port.
func parsePort(log *zap.Logger, name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 65535 {
		log.Warn("invalid port value, using default",
			zap.String("var", name), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return n
}
