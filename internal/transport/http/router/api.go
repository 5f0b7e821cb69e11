package router

import (
	"github.com/gin-gonic/gin"

	mdw "scentify/internal/transport/http/middleware"
)

// NewAPIEngine 前台：统一 /api 前缀，按 IP 限速
func NewAPIEngine(d Deps, reg *Registry) *gin.Engine {
	r := newEngine(d)
	rps, burst := d.rps()

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rps, burst),
		mdw.ConcurrencyLimit(d.concurrency()),
		mdw.MaxBodyBytes(d.maxBody()),
		mdw.Timeout(d.timeout()),
		mdw.Metrics("api"),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", health("Perfume store API is running"))
	r.GET("/metrics", mdw.MetricsHandler())

	reg.MountAllAPI(r.Group("/api"))
	return r
}
