package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(s *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: s}
}

func (h *DashboardHandler) MountAdmin(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[none, *service.Stats]{
		Method: http.MethodGet,
		Path:   "/dashboard/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*service.Stats, error) {
			return h.svc.Stats(c.Request.Context())
		},
	})
}
