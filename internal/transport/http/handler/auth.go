package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scentify/internal/domain"
	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
	mdw "scentify/internal/transport/http/middleware"
)

// AuthHandler 注册/登录，两端共用
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

func (h *AuthHandler) Priority() int { return 0 }

type meOut struct {
	User *domain.PublicUser `json:"user"`
}

func (h *AuthHandler) mount(g *gin.RouterGroup) {
	grp := g.Group("/auth")
	e := ez.New(grp)

	ez.RegisterAction(e, ez.Action[service.SignupInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.SignupInput) (*service.AuthResult, error) {
			return h.svc.Signup(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.SigninInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/signin",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.SigninInput) (*service.AuthResult, error) {
			return h.svc.Signin(c.Request.Context(), *in)
		},
	})

	// /me 必须挂在带 AuthJWT 的分组上才能拿到 userId
	authed := ez.New(grp.Group("", mdw.AuthJWT(h.svc)))
	ez.RegisterAction(authed, ez.Action[none, meOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *none) (meOut, error) {
			u, err := h.svc.Me(c.Request.Context(), c.GetString("userId"))
			return meOut{User: u}, err
		},
	})
}

func (h *AuthHandler) MountAPI(g *gin.RouterGroup)   { h.mount(g) }
func (h *AuthHandler) MountAdmin(g *gin.RouterGroup) { h.mount(g) }
