package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/core/server"
	mdw "fountain-monitor/internal/transport/http/middleware"
)

// NewAPIEngine serves /api/v1. Callers are identified when they present a
// token; each action decides whether it requires one.
func NewAPIEngine(l *zap.Logger, opts server.Options, jwter *auth.JWTer, mods ...any) *gin.Engine {
	r := server.NewRouter(l, opts)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(50, 100, 10*time.Minute),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(15*time.Second),
		mdw.Metrics("/health", "/metrics"),
		mdw.AccessLog(l),
	)
	mountProbes(r)

	api := r.Group("/api/v1")
	api.Use(mdw.OptionalJWT(jwter))
	MountAPI(api, mods...)

	return r
}

func mountProbes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
