package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scentify/internal/domain"
	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
)

const (
	catalogDefaultLimit = 50
	catalogMaxLimit     = 100
)

// CatalogHandler 前台只读商品接口
type CatalogHandler struct {
	svc *service.PerfumeService
}

func NewCatalogHandler(s *service.PerfumeService) *CatalogHandler { return &CatalogHandler{svc: s} }

func (h *CatalogHandler) Priority() int { return 10 }

type catalogQ struct {
	ScentFamily string `form:"scentFamily"`
	Gender      string `form:"gender"`
	MinPrice    string `form:"minPrice"`
	MaxPrice    string `form:"maxPrice"`
	Search      string `form:"search"`
	Sort        string `form:"sort"`
	Limit       string `form:"limit"`
}

type catalogList struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []domain.Perfume `json:"data"`
}

type catalogItem struct {
	Success bool            `json:"success"`
	Data    *domain.Perfume `json:"data"`
}

// catalogLimit limit=0 表示不限，仍受上限约束；缺省或非法取默认值
func catalogLimit(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	switch {
	case err != nil || v < 0:
		return catalogDefaultLimit
	case v == 0:
		return catalogMaxLimit
	}
	return min(v, catalogMaxLimit)
}

// filter 未知枚举值报 400；价格解析失败时忽略该条件
func (q *catalogQ) filter() (domain.CatalogFilter, error) {
	f := domain.CatalogFilter{
		MinPrice: parseFloat(q.MinPrice),
		MaxPrice: parseFloat(q.MaxPrice),
		Search:   q.Search,
		Limit:    catalogLimit(q.Limit),
	}
	if q.ScentFamily != "" {
		if err := f.ScentFamily.UnmarshalText([]byte(q.ScentFamily)); err != nil {
			return f, err
		}
	}
	if q.Gender != "" {
		if err := f.Gender.UnmarshalText([]byte(q.Gender)); err != nil {
			return f, err
		}
	}
	sort := q.Sort
	if sort == "" {
		sort = domain.DefaultCatalogSort
	}
	f.SortField, f.SortDesc = domain.ParseSort(sort)
	return f, nil
}

func (h *CatalogHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g.Group("/perfumes"))

	ez.RegisterAction(e, ez.Action[catalogQ, catalogList]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *catalogQ) (catalogList, error) {
			f, err := in.filter()
			if err != nil {
				return catalogList{}, err
			}
			items, err := h.svc.Browse(c.Request.Context(), f)
			if err != nil {
				return catalogList{}, err
			}
			if items == nil {
				items = []domain.Perfume{}
			}
			return catalogList{Success: true, Count: len(items), Data: items}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, catalogItem]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (catalogItem, error) {
			p, err := h.svc.FindOne(c.Request.Context(), c.Param("id"))
			if err != nil {
				return catalogItem{}, err
			}
			return catalogItem{Success: true, Data: p}, nil
		},
	})
}
