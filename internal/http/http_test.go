package http

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestKeypair generates a self-signed server certificate and writes the
// PEM files into a temp dir.
func writeTestKeypair(t *testing.T) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "server.crt")
	keyPath = filepath.Join(dir, "server.key")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))
	return certPath, keyPath
}

func TestNewTLSConfig(t *testing.T) {
	t.Run("ValidKeypair", func(t *testing.T) {
		certPath, keyPath := writeTestKeypair(t)

		tlsConfig, err := NewTLSConfig(certPath, keyPath, "")
		require.NoError(t, err)
		assert.Equal(t, uint16(tls.VersionTLS12), tlsConfig.MinVersion)
		assert.Len(t, tlsConfig.Certificates, 1)
		assert.Equal(t, tls.NoClientCert, tlsConfig.ClientAuth)
	})

	t.Run("MissingKeypairFailsConstruction", func(t *testing.T) {
		_, err := NewTLSConfig("/nonexistent/server.crt", "/nonexistent/server.key", "")
		assert.Error(t, err)
	})

	t.Run("ClientCARequiresClientCerts", func(t *testing.T) {
		certPath, keyPath := writeTestKeypair(t)

		tlsConfig, err := NewTLSConfig(certPath, keyPath, certPath)
		require.NoError(t, err)
		assert.Equal(t, tls.RequireAndVerifyClientCert, tlsConfig.ClientAuth)
		assert.NotNil(t, tlsConfig.ClientCAs)
	})

	t.Run("EmptyClientCABundle", func(t *testing.T) {
		certPath, keyPath := writeTestKeypair(t)
		empty := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(empty, []byte("not a certificate"), 0o600))

		_, err := NewTLSConfig(certPath, keyPath, empty)
		assert.Error(t, err)
	})
}

func TestServer_StartRefusesWithoutTLS(t *testing.T) {
	server := NewServer(nil, "localhost", 0, nil, testLogger())

	err := server.Start(t.Context())
	assert.ErrorContains(t, err, "TLS")
}

func TestHealthHandler(t *testing.T) {
	server := NewServer(nil, "localhost", 8443, nil, testLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler_NoDatabase(t *testing.T) {
	// A file-backed store has no database; readiness succeeds without a ping.
	server := NewServer(nil, "localhost", 8443, nil, testLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(testLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCORSMiddleware(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		assert.Nil(t, CreateCORSMiddleware(false, "https://example.com", testLogger()))
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		assert.Nil(t, CreateCORSMiddleware(true, "", testLogger()))
	})

	t.Run("Enabled", func(t *testing.T) {
		middleware := CreateCORSMiddleware(true, "https://example.com, https://other.example", testLogger())
		require.NotNil(t, middleware)
	})
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example"}, parseOrigins("https://a.example"))
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		parseOrigins(" https://a.example , https://b.example ,"))
}

func TestMetricsServer_NoProvider(t *testing.T) {
	server := NewMetricsServer("localhost", 8081, testLogger(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
