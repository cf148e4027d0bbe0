// Package upstream builds the gateway's long-lived outbound HTTP
// clients: one for plain backends, one for TLS backends, both with
// connection pooling and HTTP/2 negotiation, matching the teacher's
// explicit http2.ConfigureTransport wiring rather than relying on
// net/http's implicit defaults.
package upstream

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/latticegw/gatewayd/internal/gwerrors"
)

// Pool holds the two outbound clients the rewriter dispatches through.
type Pool struct {
	Plain *http.Client
	TLS   *http.Client
}

// Build constructs a Pool. insecureSkipVerify is applied to the TLS
// client once, from the OR of every proxy definition's
// skip_certificate_verification flag.
func Build(insecureSkipVerify bool) (*Pool, error) {
	plainTransport := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if err := http2.ConfigureTransport(plainTransport); err != nil {
		return nil, gwerrors.Wrap(gwerrors.Upstream, "configuring HTTP/2 transport", err)
	}

	tlsTransport := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecureSkipVerify,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if err := http2.ConfigureTransport(tlsTransport); err != nil {
		return nil, gwerrors.Wrap(gwerrors.Upstream, "configuring HTTP/2 transport", err)
	}

	return &Pool{
		Plain: &http.Client{Transport: plainTransport},
		TLS:   &http.Client{Transport: tlsTransport},
	}, nil
}

// For returns the client appropriate for backendProtocol ("http" or
// "https").
func (p *Pool) For(backendProtocol string) *http.Client {
	if backendProtocol == "https" {
		return p.TLS
	}
	return p.Plain
}
