package blob

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphinium/delphinium/internal/ports"
)

func generatePEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	pemKey := generatePEM(t)

	t.Run("service account json", func(t *testing.T) {
		raw, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"client_email": "signer@delphinium.iam.gserviceaccount.com",
			"private_key":  string(pemKey),
		})
		require.NoError(t, err)

		creds, err := LoadCredentials(writeFile(t, "key.json", raw), "")
		require.NoError(t, err)
		assert.Equal(t, "signer@delphinium.iam.gserviceaccount.com", creds.Email)
		assert.Equal(t, pemKey, creds.PrivateKey)
	})

	t.Run("pem with email", func(t *testing.T) {
		creds, err := LoadCredentials(writeFile(t, "key.pem", pemKey), "other@example.com")
		require.NoError(t, err)
		assert.Equal(t, "other@example.com", creds.Email)
	})

	t.Run("pem without email", func(t *testing.T) {
		_, err := LoadCredentials(writeFile(t, "key.pem", pemKey), "")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.json"), "x@example.com")
		assert.Error(t, err)
	})
}

func TestGCSSigner(t *testing.T) {
	creds := &Credentials{Email: "signer@delphinium.iam.gserviceaccount.com", PrivateKey: generatePEM(t)}
	signer := NewGCSSigner("delphinium-documents", creds, 0)
	ctx := context.Background()

	assert.Equal(t, time.Hour, signer.TTL())

	t.Run("put", func(t *testing.T) {
		raw, err := signer.SignedPutURL(ctx, "documents/abc/minutes.pdf", "application/pdf")
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "storage.googleapis.com", u.Host)
		assert.Equal(t, "/delphinium-documents/documents/abc/minutes.pdf", u.Path)

		q := u.Query()
		assert.Equal(t, "GOOG4-RSA-SHA256", q.Get("X-Goog-Algorithm"))
		assertExpiresAboutAnHour(t, q.Get("X-Goog-Expires"))
		assert.NotEmpty(t, q.Get("X-Goog-Date"))
		assert.Contains(t, q.Get("X-Goog-SignedHeaders"), "content-type")
		assert.NotEmpty(t, q.Get("X-Goog-Signature"))
	})

	t.Run("get", func(t *testing.T) {
		raw, err := signer.SignedGetURL(ctx, "documents/abc/minutes.pdf")
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assertExpiresAboutAnHour(t, u.Query().Get("X-Goog-Expires"))
		assert.NotContains(t, u.Query().Get("X-Goog-SignedHeaders"), "content-type")
	})
}

// assertExpiresAboutAnHour allows for the seconds elapsed between computing and signing.
func assertExpiresAboutAnHour(t *testing.T, raw string) {
	t.Helper()
	seconds, err := strconv.Atoi(raw)
	require.NoError(t, err)
	assert.InDelta(t, 3600, seconds, 5)
}

func TestDisabledSigner(t *testing.T) {
	_, err := DisabledSigner{}.SignedGetURL(context.Background(), "documents/x/y")
	assert.ErrorIs(t, err, ports.ErrBlobSignerDisabled)
	_, err = DisabledSigner{}.SignedPutURL(context.Background(), "documents/x/y", "text/plain")
	assert.ErrorIs(t, err, ports.ErrBlobSignerDisabled)
}
