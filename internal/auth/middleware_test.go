package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const mwSecret = "secret"

func newRouter(rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(mwSecret, rdb))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	return r
}

func do(r *gin.Engine, target, token string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	if code := do(newRouter(nil), "/test", ""); code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	if code := do(newRouter(nil), "/test", "not.a.valid.jwt"); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid JWT, got %d", code)
	}
}

func TestAuthMiddleware_NoSessionStore(t *testing.T) {
	token, _ := GenerateJWT(mwSecret, 7, "a@b.c", time.Minute)
	if code := do(newRouter(nil), "/test?userId=7", token); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_UserMismatch(t *testing.T) {
	token, _ := GenerateJWT(mwSecret, 7, "a@b.c", time.Minute)
	if code := do(newRouter(nil), "/test?userId=8", token); code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", code)
	}
}

func TestAuthMiddleware_SessionInvalid(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	token, _ := GenerateJWT(mwSecret, 123, "a@b.c", time.Minute)
	// No session in Redis
	if code := do(newRouter(rdb), "/test", token); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for session error, got %d", code)
	}
}

func TestAuthMiddleware_SessionSlides(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	token, _ := GenerateJWT(mwSecret, 123, "a@b.c", time.Minute)
	_ = SetSession(context.Background(), rdb, 123, token, time.Minute)

	if code := do(newRouter(rdb), "/test", token); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if ttl := mr.TTL("session:123"); ttl != SessionTTL {
		t.Errorf("expected session TTL %v, got %v", SessionTTL, ttl)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	token, _ := GenerateJWT(mwSecret, 7, "a@b.c", time.Minute)
	if code := do(newRouter(nil), "/test?userId=7&access_token="+token, ""); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}
