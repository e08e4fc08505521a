package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animai/internal/auth"
	"animai/internal/config"
	"animai/internal/incubator"
	"animai/internal/store"
)

func TestLoginHandler_CreatesThenVerifies(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/login", `{"email":"momo@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[LoginResponse](t, w)
	assert.NotZero(t, first.UserID)
	assert.Equal(t, "momo", first.Nickname)
	assert.NotEmpty(t, first.Token)

	claims, err := auth.ParseJWT("secret", first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, claims.UserID)

	w = ts.do(http.MethodPost, "/api/login", `{"email":"momo@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.UserID, decode[LoginResponse](t, w).UserID)

	w = ts.do(http.MethodPost, "/api/login", `{"email":"momo@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHandler_InvalidRequest(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []string{`{`, `{"password":"pw"}`, `{"email":"   "}`} {
		w := ts.do(http.MethodPost, "/api/login", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestLoginHandler_NoSecretNoToken(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Server.JWTSecret = "" })
	resp := ts.login(t, "a@b.c")
	assert.Empty(t, resp.Token)
}

func TestRequireAuth_WithSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.Default()
	cfg.Server.JWTSecret = "secret"
	cfg.Server.RequireAuth = true
	inc := incubator.New(incubator.Options{Store: store.NewMemory()})
	ts := &testServer{router: SetupRouter(Deps{Config: cfg, Incubator: inc, Redis: rdb}), cfg: cfg}

	u := ts.login(t, "momo@example.com")
	stored, err := auth.GetSession(context.Background(), rdb, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Token, stored)

	target := fmt.Sprintf("/api/eggs/0/messages?userId=%d", u.UserID)
	w := ts.do(http.MethodPost, target, `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, target, `{"message":"hi"}`, "Authorization", "Bearer "+u.Token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	other := fmt.Sprintf("/api/eggs/0/messages?userId=%d", u.UserID+1)
	w = ts.do(http.MethodPost, other, `{"message":"hi"}`, "Authorization", "Bearer "+u.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/users/online", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online":1`)

	w = ts.do(http.MethodPost, "/api/logout", "", "Authorization", "Bearer "+u.Token)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodPost, target, `{"message":"hi"}`, "Authorization", "Bearer "+u.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "session is gone after logout")
}
