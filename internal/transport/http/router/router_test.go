package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentify/internal/core/auth"
	"scentify/internal/core/config"
	"scentify/internal/domain"
	"scentify/internal/repo"
	"scentify/internal/service"
)

type mod struct {
	name  string
	prio  int
	trace *[]string
}

func (m mod) Priority() int { return m.prio }

func (m mod) MountAPI(g *gin.RouterGroup) {
	*m.trace = append(*m.trace, m.name)
	g.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

func (m mod) MountAdmin(g *gin.RouterGroup) {
	*m.trace = append(*m.trace, m.name)
	g.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

type publicMod struct{}

func (publicMod) MountAdmin(g *gin.RouterGroup) {
	g.POST("/auth/signin", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func deps() Deps {
	return Deps{Log: zap.NewNop(), Env: "test", Limits: config.Limits{RPS: 1000, Burst: 1000, Concurrency: 10, TimeoutSec: 5}}
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegistryPriority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var trace []string
	reg := NewRegistry(
		mod{name: "late", prio: 50, trace: &trace},
		mod{name: "first", prio: 1, trace: &trace},
		mod{name: "mid", prio: 10, trace: &trace},
	)
	reg.MountAllAPI(gin.New().Group("/api"))
	assert.Equal(t, []string{"first", "mid", "late"}, trace)
	assert.Equal(t, 100, priorityOf(publicMod{}))
}

func TestAPIEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var trace []string
	r := NewAPIEngine(deps(), NewRegistry(mod{name: "perfumes", trace: &trace}))

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, get(r, "/api/perfumes").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/perfumes").Code)

	w = get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestAdminEngineOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var trace []string
	r := NewAdminEngine(deps(), AdminGuard{}, publicMod{}, NewRegistry(mod{name: "users", trace: &trace}))

	assert.Equal(t, http.StatusOK, get(r, "/users").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
}

func TestAdminEngineGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	users := repo.NewUserMemRepo()
	j := auth.NewJWTer("secret", "scentify", time.Hour)

	admin := domain.NewUser("Ada", "Root", "ada@x.io", "h")
	admin.Role = domain.RoleAdmin
	require.NoError(t, users.Create(ctx, admin))
	plain := domain.NewUser("Bob", "User", "bob@x.io", "h")
	require.NoError(t, users.Create(ctx, plain))

	var trace []string
	r := NewAdminEngine(deps(), AdminGuard{Enabled: true, Tokens: service.NewAuthService(users, j, zap.NewNop()), Users: users}, publicMod{},
		NewRegistry(mod{name: "users", trace: &trace}))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/users").Code)

	tok, err := j.Issue(plain.ID, plain.Email)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/users", "Authorization", "Bearer "+tok).Code)

	tok, err = j.Issue(admin.ID, admin.Email)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "/users", "Authorization", "Bearer "+tok).Code)

	// 公开路由不受 guard 影响
	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
