package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"animai/internal/auth"
	"animai/internal/config"
	"animai/internal/incubator"
	"animai/internal/logging"
)

const tokenTTL = 7 * 24 * time.Hour

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginResponse struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Token    string `json:"token,omitempty"`
}

// POST /api/login creates the account on first sight of an email.
func LoginHandler(cfg *config.Config, inc *incubator.Incubator, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		u, err := inc.Login(c.Request.Context(), req.Email, req.Password, req.Nickname)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := LoginResponse{UserID: u.ID, Email: u.Email, Nickname: u.Nickname}
		if cfg.Server.JWTSecret != "" {
			token, err := auth.GenerateJWT(cfg.Server.JWTSecret, u.ID, u.Email, tokenTTL)
			if err != nil {
				abortWithMessage(c, http.StatusInternalServerError, "Failed to generate token")
				return
			}
			resp.Token = token
			if rdb != nil {
				if err := auth.SetSession(c.Request.Context(), rdb, u.ID, token, auth.SessionTTL); err != nil {
					logging.From(c, zap.L()).Warn("Failed to store session", zap.Uint("user_id", u.ID), zap.Error(err))
				}
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// POST /api/logout drops the session; requires AuthMiddleware.
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, exists := c.Get(auth.ContextUserID)
		if !exists {
			abortWithMessage(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if rdb != nil {
			_ = auth.DeleteSession(c.Request.Context(), rdb, userId.(uint))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// OnlineUserCountHandler returns the number of unique online users.
func OnlineUserCountHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := auth.OnlineUserCount(c.Request.Context(), rdb)
		if err != nil {
			abortWithMessage(c, http.StatusInternalServerError, "Failed to count online users")
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": count})
	}
}
