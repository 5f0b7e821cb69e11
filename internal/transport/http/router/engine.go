package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"scentify/internal/core/config"
	"scentify/internal/core/server"
)

// Deps 两个引擎共用的装配参数
type Deps struct {
	Log    *zap.Logger
	Env    string
	Limits config.Limits
	// MaxBodyBytes 为 0 时用 16MB
	MaxBodyBytes int64
}

func (d Deps) timeout() time.Duration {
	if d.Limits.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.Limits.TimeoutSec) * time.Second
}

func (d Deps) maxBody() int64 {
	if d.MaxBodyBytes <= 0 {
		return 16 << 20
	}
	return d.MaxBodyBytes
}

func (d Deps) rps() (rate.Limit, int) {
	rps, burst := d.Limits.RPS, d.Limits.Burst
	if rps <= 0 {
		rps = 200
	}
	if burst <= 0 {
		burst = 400
	}
	return rate.Limit(rps), burst
}

func (d Deps) concurrency() int64 {
	if d.Limits.Concurrency <= 0 {
		return 300
	}
	return d.Limits.Concurrency
}

func newEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.Env)
	r.MaxMultipartMemory = 32 << 20
	return r
}

// health 存活探针
func health(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
