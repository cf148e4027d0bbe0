// Package gwtls builds the *tls.Config used by the gateway's HTTPS
// listener from a PEM certificate chain and private key on disk.
package gwtls

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/latticegw/gatewayd/internal/gwerrors"
)

// Build loads a certificate chain and private key from certPath and
// keyPath and returns a *tls.Config offering h2 and http/1.1 via ALPN.
// No client certificate authentication is configured.
func Build(certPath, keyPath string) (*tls.Config, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.Io, "reading TLS certificate", err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.Io, "reading TLS key", err)
	}

	if _, err := parsePrivateKey(keyPEM); err != nil {
		return nil, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.Tls, "building X509 key pair", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// parsePrivateKey decodes a PEM-encoded private key, trying PKCS#8,
// then PKCS#1 (RSA), then SEC1 (EC), in that order — the same
// decomposition rustls-pemfile performed for the original
// implementation, provided here directly by crypto/x509.
func parsePrivateKey(keyPEM []byte) (any, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, gwerrors.New(gwerrors.Tls, "no PEM block found in TLS key file")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		switch key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		}
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, gwerrors.New(gwerrors.Tls, "unrecognized TLS private key encoding")
}
