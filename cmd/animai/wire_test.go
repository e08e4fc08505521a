package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"animai/internal/api"
	"animai/internal/config"
	"animai/internal/egg"
	"animai/internal/lock"
)

func TestBuild_MemoryRule(t *testing.T) {
	a, err := build(context.Background(), config.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	u, err := a.incubator.Login(context.Background(), "a@b.c", "", "")
	require.NoError(t, err)
	res, err := a.incubator.HandleMessage(context.Background(), u.ID, 0, "안녕")
	require.NoError(t, err)
	assert.Equal(t, egg.Neutral, res.Personality)
}

func TestBuild_SQLiteRedisModel(t *testing.T) {
	mr := miniredis.RunT(t)
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" 안녕, 나는 알이야 "}}]}`))
	}))
	defer llmSrv.Close()

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:wiretest?mode=memory&cache=shared"
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Lock.Backend = "redis"
	cfg.Reply.Mode = "model"
	cfg.LLM.URL = llmSrv.URL
	require.NoError(t, cfg.Validate())

	a, err := build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	u, err := a.incubator.Login(ctx, "a@b.c", "", "")
	require.NoError(t, err)
	res, err := a.incubator.HandleMessage(ctx, u.ID, 0, "hello")
	require.NoError(t, err)
	assert.Equal(t, "안녕, 나는 알이야", res.Reply)
	assert.False(t, mr.Exists("animai:lock:"+lock.EggKey(res.EggID)), "lock released")

	r := api.SetupRouter(a.deps())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), `animai_messages_total{generator="model"} 1`), w.Body.String())
}

func TestBuild_ModelFallsBackToRule(t *testing.T) {
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer llmSrv.Close()

	cfg := config.Default()
	cfg.Reply.Mode = "model"
	cfg.LLM.URL = llmSrv.URL

	a, err := build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	u, err := a.incubator.Login(ctx, "a@b.c", "", "")
	require.NoError(t, err)
	res, err := a.incubator.HandleMessage(ctx, u.ID, 0, "숲")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "숲 속 향기")
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	_, err := build(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
