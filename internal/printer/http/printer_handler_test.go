package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/printserver/internal/audit"
	"github.com/printops/printserver/internal/gate"
	"github.com/printops/printserver/internal/metrics"
	"github.com/printops/printserver/internal/printer/backend"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubCredentials struct {
	err error
}

func (s *stubCredentials) Verify(ctx context.Context, username, secret string) error {
	return s.err
}

type stubAccess struct {
	err error
}

func (s *stubAccess) Authorize(
	ctx context.Context,
	username string,
	operation printerDomain.Operation,
) error {
	return s.err
}

type handlerFixture struct {
	router  *gin.Engine
	backend *backend.MemoryBackend
	records []*audit.Record
}

func (f *handlerFixture) Record(ctx context.Context, record *audit.Record) error {
	f.records = append(f.records, record)
	return nil
}

func newHandlerFixture(t *testing.T, credentialErr, accessErr error) *handlerFixture {
	t.Helper()

	f := &handlerFixture{backend: backend.NewMemoryBackend()}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dispatcher := gate.NewDispatcher(
		&stubCredentials{err: credentialErr},
		&stubAccess{err: accessErr},
		f,
		metrics.NewNoOpBusinessMetrics(),
		logger,
	)

	handler := NewPrinterHandler(dispatcher, f.backend, "printserver", logger)

	f.router = gin.New()
	f.router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	handler.RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestOperationsHandler(t *testing.T) {
	f := newHandlerFixture(t, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/printserver/operations", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Service    string   `json:"service"`
		Operations []string `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "printserver", response.Service)
	assert.Len(t, response.Operations, 9)
	assert.Contains(t, response.Operations, "print")
	assert.Contains(t, response.Operations, "topQueue")
}

func TestPrintHandler(t *testing.T) {
	t.Run("Completed", func(t *testing.T) {
		f := newHandlerFixture(t, nil, nil)

		w := f.post(t, "/v1/printserver/print",
			`{"username":"alice","password":"hunter2","filename":"report.pdf","printer":"lobby"}`)

		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "print", response["operation"])

		require.Len(t, f.records, 1)
		assert.Equal(t, audit.OutcomeCompleted, f.records[0].Outcome)
		assert.NotEmpty(t, f.records[0].RequestID)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		f := newHandlerFixture(t, nil, nil)

		w := f.post(t, "/v1/printserver/print", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.records)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		f := newHandlerFixture(t, nil, nil)

		w := f.post(t, "/v1/printserver/print",
			`{"filename":"report.pdf","printer":"lobby"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		// Rejected before the gate, so no audit record.
		assert.Empty(t, f.records)
	})

	t.Run("MissingFilename", func(t *testing.T) {
		f := newHandlerFixture(t, nil, nil)

		w := f.post(t, "/v1/printserver/print",
			`{"username":"alice","password":"hunter2","printer":"lobby"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandler_CredentialDenial(t *testing.T) {
	f := newHandlerFixture(t, printerDomain.ErrInvalidCredentials, nil)

	w := f.post(t, "/v1/printserver/status",
		`{"username":"alice","password":"wrong-secret","printer":"lobby"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// The response never carries the submitted secret.
	assert.NotContains(t, w.Body.String(), "wrong-secret")

	require.Len(t, f.records, 1)
	assert.Equal(t, audit.OutcomeCredentialDenied, f.records[0].Outcome)
	assert.NotContains(t, f.records[0].Reason, "wrong-secret")
}

func TestHandler_PermissionDenial(t *testing.T) {
	f := newHandlerFixture(t, nil, printerDomain.ErrNotAuthorized)

	w := f.post(t, "/v1/printserver/restart",
		`{"username":"bob","password":"hunter2"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")

	require.Len(t, f.records, 1)
	assert.Equal(t, audit.OutcomePermissionDenied, f.records[0].Outcome)
}

func TestQueueHandler_ReturnsQueueListing(t *testing.T) {
	f := newHandlerFixture(t, nil, nil)

	w := f.post(t, "/v1/printserver/print",
		`{"username":"alice","password":"hunter2","filename":"a.pdf","printer":"lobby"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/v1/printserver/queue",
		`{"username":"alice","password":"hunter2","printer":"lobby"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["result"], "a.pdf")
}

func TestTopQueueHandler_UnknownJobIsBackendError(t *testing.T) {
	f := newHandlerFixture(t, nil, nil)

	w := f.post(t, "/v1/printserver/topQueue",
		`{"username":"alice","password":"hunter2","printer":"lobby","job":42}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.Len(t, f.records, 1)
	assert.Equal(t, audit.OutcomeBackendError, f.records[0].Outcome)
}

func TestServiceHandlers(t *testing.T) {
	f := newHandlerFixture(t, nil, nil)
	body := `{"username":"alice","password":"hunter2"}`

	w := f.post(t, "/v1/printserver/stop", body)
	assert.Equal(t, http.StatusOK, w.Code)

	// Printing against a stopped service fails through to the caller.
	w = f.post(t, "/v1/printserver/print",
		`{"username":"alice","password":"hunter2","filename":"a.pdf","printer":"lobby"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = f.post(t, "/v1/printserver/start", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/v1/printserver/restart", body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfigHandlers(t *testing.T) {
	f := newHandlerFixture(t, nil, nil)

	w := f.post(t, "/v1/printserver/setConfig",
		`{"username":"alice","password":"hunter2","parameter":"duplex","value":"on"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/v1/printserver/readConfig",
		`{"username":"alice","password":"hunter2","parameter":"duplex"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "on", response["result"])
}
