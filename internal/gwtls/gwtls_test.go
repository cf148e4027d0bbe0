package gwtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, key any, pemType string, keyBytes []byte) (certPath, keyPath string) {
	t.Helper()
	dir := t.TempDir()

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	var pub any
	switch k := key.(type) {
	case *rsa.PrivateKey:
		pub = &k.PublicKey
	case *ecdsa.PrivateKey:
		pub = &k.PublicKey
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pub, key)
	require.NoError(t, err)

	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")

	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: keyBytes}), 0o600))
	return certPath, keyPath
}

func TestBuild_RSAPKCS8Key(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	certPath, keyPath := writeSelfSigned(t, key, "PRIVATE KEY", der)

	cfg, err := Build(certPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "http/1.1"}, cfg.NextProtos)
	require.Len(t, cfg.Certificates, 1)
}

func TestBuild_RSAPKCS1Key(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der := x509.MarshalPKCS1PrivateKey(key)

	certPath, keyPath := writeSelfSigned(t, key, "RSA PRIVATE KEY", der)

	cfg, err := Build(certPath, keyPath)
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
}

func TestBuild_ECSEC1Key(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPath, keyPath := writeSelfSigned(t, key, "EC PRIVATE KEY", der)

	cfg, err := Build(certPath, keyPath)
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
}

func TestBuild_MissingFilesIsIOError(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(filepath.Join(dir, "missing-cert.pem"), filepath.Join(dir, "missing-key.pem"))
	require.Error(t, err)
}

func TestBuild_UnrecognizedKeyEncodingIsTLSError(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, []byte("not a cert"), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "GARBAGE", Bytes: []byte("not a key")}), 0o600))

	_, err := Build(certPath, keyPath)
	require.Error(t, err)
}
