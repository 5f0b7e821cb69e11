package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scentify/internal/core/errs"
	"scentify/internal/domain"
	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
)

// PerfumeHandler 管理端商品 CRUD
type PerfumeHandler struct {
	svc *service.PerfumeService
}

func NewPerfumeHandler(s *service.PerfumeService) *PerfumeHandler { return &PerfumeHandler{svc: s} }

func (h *PerfumeHandler) Priority() int { return 10 }

func (h *PerfumeHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g.Group("/perfumes"))

	ez.RegisterAction(e, ez.Action[none, *domain.Page[domain.Perfume]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.Page[domain.Perfume], error) {
			page, limit := pageParams(c)
			return h.svc.FindAll(c.Request.Context(), page, limit)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.Perfume]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.Perfume, error) {
			q := strings.TrimSpace(c.Query("q"))
			if q == "" {
				return nil, errs.BadRequest("Search query is required")
			}
			return h.svc.Search(c.Request.Context(), q)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.Perfume]{
		Method: http.MethodGet,
		Path:   "/brand/:brand",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.Perfume, error) {
			return h.svc.FindByBrand(c.Request.Context(), c.Param("brand"))
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.Perfume]{
		Method: http.MethodGet,
		Path:   "/scent-family/:scentFamily",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.Perfume, error) {
			var f domain.ScentFamily
			if err := f.UnmarshalText([]byte(c.Param("scentFamily"))); err != nil {
				return nil, err
			}
			return h.svc.FindByScentFamily(c.Request.Context(), f)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.Perfume]{
		Method: http.MethodGet,
		Path:   "/gender/:gender",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.Perfume, error) {
			var gd domain.Gender
			if err := gd.UnmarshalText([]byte(c.Param("gender"))); err != nil {
				return nil, err
			}
			return h.svc.FindByGender(c.Request.Context(), gd)
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Perfume]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.Perfume, error) {
			return h.svc.FindOne(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.CreatePerfume, *domain.Perfume]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreatePerfume) (*domain.Perfume, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[domain.PerfumePatch, *domain.Perfume]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.PerfumePatch) (*domain.Perfume, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), in)
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Perfume]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.Perfume, error) {
			return h.svc.Remove(c.Request.Context(), c.Param("id"))
		},
	})
}
