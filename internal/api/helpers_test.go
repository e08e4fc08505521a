package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"animai/internal/config"
	"animai/internal/incubator"
	"animai/internal/metrics"
	"animai/internal/store"
)

type testServer struct {
	router *gin.Engine
	inc    *incubator.Incubator
	hub    *Hub
	store  store.Store
	cfg    *config.Config
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.JWTSecret = "secret"
	for _, m := range mutate {
		m(cfg)
	}
	m := metrics.New()
	hub := NewHub(m)
	s := store.NewMemory()
	inc := incubator.New(incubator.Options{Store: s, Notifier: hub, Metrics: m})
	return &testServer{
		router: SetupRouter(Deps{Config: cfg, Incubator: inc, Metrics: m, Hub: hub}),
		inc:    inc,
		hub:    hub,
		store:  s,
		cfg:    cfg,
	}
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email string) LoginResponse {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/login", `{"email":"`+email+`","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
