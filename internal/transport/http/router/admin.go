package router

import (
	"github.com/gin-gonic/gin"

	"scentify/internal/domain"
	mdw "scentify/internal/transport/http/middleware"
)

// AdminGuard requireAuth 打开时才生效
type AdminGuard struct {
	Enabled bool
	Tokens  mdw.TokenVerifier
	Users   domain.UserRepository
}

// NewAdminEngine 管理端：无路径前缀；/auth、/health、/metrics 不受 guard 约束
func NewAdminEngine(d Deps, g AdminGuard, public AdminModule, reg *Registry) *gin.Engine {
	r := newEngine(d)
	rps, burst := d.rps()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rps, burst),
		mdw.ConcurrencyLimit(d.concurrency()),
		mdw.MaxBodyBytes(d.maxBody()),
		mdw.Timeout(d.timeout()),
		mdw.Metrics("admin"),
		mdw.AccessLog(d.Log),
	)

	// 健康检查 + 指标
	r.GET("/health", health("Admin API is running"))
	r.GET("/metrics", mdw.MetricsHandler())

	if public != nil {
		public.MountAdmin(&r.RouterGroup)
	}

	protected := r.Group("")
	if g.Enabled {
		protected.Use(mdw.AuthJWT(g.Tokens), mdw.RequireAdmin(g.Users))
	}
	reg.MountAllAdmin(protected)
	return r
}
