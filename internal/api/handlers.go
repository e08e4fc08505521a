package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"animai/internal/config"
)

// HealthCheck probes a dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

// GET /health
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		details := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				details[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			details[name] = "ok"
		}
		c.JSON(code, gin.H{"status": status, "checks": details})
	}
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"subpath":     cfg.Server.Subpath,
				"requireAuth": cfg.Server.RequireAuth,
			},
			"reply": gin.H{
				"mode":  cfg.Reply.Mode,
				"model": cfg.LLM.Name,
			},
			"database": cfg.Database.Driver,
			"growth": gin.H{
				"personalityWindow": cfg.Growth.PersonalityWindow,
			},
		})
	}
}
