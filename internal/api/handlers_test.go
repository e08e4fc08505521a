package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"animai/internal/config"
)

func TestHealthHandler_ReturnsOk(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", healthHandler(map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("expected response to contain 'ok', got: %s", w.Body.String())
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", healthHandler(map[string]HealthCheck{
		"store": func(context.Context) error { return errors.New("connection refused") },
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !contains(w.Body.String(), "connection refused") {
		t.Errorf("expected check detail, got: %s", w.Body.String())
	}
}

func TestConfigHandler_HidesSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Server.JWTSecret = "super-secret"
	cfg.LLM.APIKey = "sk-hidden"
	cfg.LLM.Name = "qwen"
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/config", configHandler(cfg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/config", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !contains(body, `"qwen"`) {
		t.Errorf("expected model name in config, got: %s", body)
	}
	if contains(body, "super-secret") || contains(body, "sk-hidden") {
		t.Errorf("config leaked a secret: %s", body)
	}
}
