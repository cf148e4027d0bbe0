// Package proxydef holds the proxy-definition data model (C1) and the
// YAML loader that produces a list of definitions from a file (C3).
package proxydef

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/latticegw/gatewayd/internal/gwerrors"
)

// Definition is the unit of routing configuration: it maps an inbound
// listen_path to a backend origin and rewrite policy.
type Definition struct {
	ID                       string `yaml:"id"`
	Name                     string `yaml:"name"`
	ListenPath               string `yaml:"listen_path"`
	BackendProtocol          string `yaml:"backend_protocol"`
	BackendHost              string `yaml:"backend_host"`
	BackendPort              int    `yaml:"backend_port"`
	BackendPath              string `yaml:"backend_path"`
	StripListenPath          bool   `yaml:"strip_listen_path"`
	PreserveHostHeader       bool   `yaml:"preserve_host_header"`
	BackendConnectTimeoutMs  int    `yaml:"backend_connect_timeout_ms"`
	BackendReadTimeoutMs     int    `yaml:"backend_read_timeout_ms"`
	BackendWriteTimeoutMs    int    `yaml:"backend_write_timeout_ms"`
	SkipCertificateVerify    bool   `yaml:"skip_certificate_verification"`
}

// file is the top-level shape of the proxy-definition YAML document.
type file struct {
	Proxies []Definition `yaml:"proxies"`
}

const (
	defaultBackendPort           = 80
	defaultBackendPath           = "/"
	defaultConnectTimeoutMs      = 3000
	defaultReadTimeoutMs         = 30000
	defaultWriteTimeoutMs        = 30000
)

// applyDefaults fills in zero-valued optional fields and normalizes
// listen_path to begin with a leading slash.
func (d *Definition) applyDefaults() {
	if d.BackendPort == 0 {
		d.BackendPort = defaultBackendPort
	}
	if d.BackendPath == "" {
		d.BackendPath = defaultBackendPath
	}
	if d.BackendConnectTimeoutMs == 0 {
		d.BackendConnectTimeoutMs = defaultConnectTimeoutMs
	}
	if d.BackendReadTimeoutMs == 0 {
		d.BackendReadTimeoutMs = defaultReadTimeoutMs
	}
	if d.BackendWriteTimeoutMs == 0 {
		d.BackendWriteTimeoutMs = defaultWriteTimeoutMs
	}
	if d.BackendProtocol != "http" && d.BackendProtocol != "https" {
		d.BackendProtocol = "http"
	}
	if !strings.HasPrefix(d.ListenPath, "/") {
		d.ListenPath = "/" + d.ListenPath
	}
}

// Load reads and parses the proxy-definition YAML file at path,
// applying defaults to every definition.
func Load(path string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.Io, "reading proxy config", err)
	}

	var doc file
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, gwerrors.Wrap(gwerrors.Parse, "parsing proxy config YAML", err)
	}

	defs := doc.Proxies
	for i := range defs {
		defs[i].applyDefaults()
	}
	return defs, nil
}

// AnySkipsCertificateVerification reports whether any definition in
// defs requests that the HTTPS outbound client skip certificate
// verification.
func AnySkipsCertificateVerification(defs []Definition) bool {
	for _, d := range defs {
		if d.SkipCertificateVerify {
			return true
		}
	}
	return false
}
