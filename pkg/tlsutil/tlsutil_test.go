package tlsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevCertificates_LoadAsServerAndClient(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, DevCertificates(dir, "localhost", "127.0.0.1"))

	srv, err := ServerCredentials(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", srv.Info().SecurityProtocol)

	cli, err := ClientCredentials(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", cli.Info().SecurityProtocol)
}

func TestServerCredentials_MissingFiles(t *testing.T) {
	_, err := ServerCredentials("/nonexistent/server.pem", "/nonexistent/server-key.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load server key pair")
}

func TestClientCredentials_InvalidCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := ClientCredentials(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificates found")
}

func TestClientCredentials_SystemPool(t *testing.T) {
	creds, err := ClientCredentials("")
	require.NoError(t, err)
	assert.NotNil(t, creds)
}
