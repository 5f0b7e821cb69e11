package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scentify/internal/domain"
	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler { return &UserHandler{svc: s} }

func (h *UserHandler) Priority() int { return 30 }

type userListQ struct {
	Role   string `form:"role"`
	Active string `form:"active"`
}

func (h *UserHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g.Group("/users"))

	// ?active=true 优先，其次 ?role=
	ez.RegisterAction(e, ez.Action[userListQ, []domain.User]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userListQ) ([]domain.User, error) {
			ctx := c.Request.Context()
			switch {
			case in.Active == "true":
				return h.svc.FindActive(ctx)
			case in.Role != "":
				var r domain.Role
				if err := r.UnmarshalText([]byte(in.Role)); err != nil {
					return nil, err
				}
				return h.svc.FindByRole(ctx, r)
			default:
				return h.svc.FindAll(ctx)
			}
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.User, error) {
			return h.svc.FindOne(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.UserPatch, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.UserPatch) (*domain.User, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), in)
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.User]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.User, error) {
			return h.svc.Remove(c.Request.Context(), c.Param("id"))
		},
	})
}
