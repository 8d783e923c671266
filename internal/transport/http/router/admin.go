package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/core/server"
	"fountain-monitor/internal/domain"
	mdw "fountain-monitor/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1 to Managers only.
func NewAdminEngine(l *zap.Logger, opts server.Options, jwter *auth.JWTer, mods ...any) *gin.Engine {
	r := server.NewRouter(l, opts)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(30*time.Second),
		mdw.Metrics("/health", "/metrics"),
		mdw.AccessLog(l),
	)
	mountProbes(r)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.RoleManager))
	MountAdmin(admin, mods...)

	return r
}
