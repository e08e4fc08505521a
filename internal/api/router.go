package api

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"animai/internal/auth"
	"animai/internal/config"
	"animai/internal/incubator"
	"animai/internal/logging"
	"animai/internal/metrics"
)

// Deps is everything the router wires into handlers. Redis, Metrics and
// Hub are optional.
type Deps struct {
	Config    *config.Config
	Incubator *incubator.Incubator
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Hub       *Hub
	Logger    *zap.Logger
	Checks    map[string]HealthCheck
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	checks := d.Checks
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger(d.Logger, d.Metrics.HTTPRequest))
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	subpath := cfg.Server.Subpath // e.g. "/animai", always starts with '/'
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler(checks))
		group.GET("/config", configHandler(cfg))
		if d.Metrics != nil {
			group.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
		}
	}
	r.GET(path.Join("/", subpath), func(c *gin.Context) {
		c.String(http.StatusOK, "AnimAI backend is alive")
	})

	api := group.Group("/api")
	api.POST("/login", LoginHandler(cfg, d.Incubator, d.Redis))

	protected := api.Group("")
	if cfg.Server.RequireAuth {
		protected.Use(auth.AuthMiddleware(cfg.Server.JWTSecret, d.Redis))
		protected.POST("/logout", LogoutHandler(d.Redis))
	}
	{
		protected.POST("/eggs/:eggId/messages", SendMessageHandler(d.Incubator))
		protected.GET("/eggs/:eggId/messages", ListMessagesHandler(d.Incubator))
		protected.GET("/eggs/:eggId/status", EggStatusHandler(d.Incubator))
		protected.POST("/eggs/:eggId/hatch", HatchHandler(d.Incubator))
		protected.GET("/pets", ListPetsHandler(d.Incubator))
		if d.Hub != nil {
			protected.GET("/ws/eggs", WSEggHandler(d.Hub, d.Incubator, newUpgrader(cfg.Server.AllowedOrigins)))
		}
	}
	if d.Redis != nil {
		api.GET("/users/online", OnlineUserCountHandler(d.Redis))
	}
	return r
}

// corsMiddleware allows the configured frontends; with none configured any
// origin is allowed.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}
