package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scentify/internal/core/errs"
)

type FragranceNotes struct {
	Top    []string `json:"top"`
	Middle []string `json:"middle"`
	Base   []string `json:"base"`
}

// Size 规格：容量/价格可选，库存默认 0
type Size struct {
	Volume *float64 `json:"volume,omitempty" binding:"omitnil,gt=0"`
	Price  *float64 `json:"price,omitempty"  binding:"omitnil,gte=0"`
	Stock  int      `json:"stock"            binding:"gte=0"`
}

type Perfume struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Brand          string         `json:"brand"`
	Description    string         `json:"description"`
	Price          *float64       `json:"price,omitempty"`
	Type           PerfumeType    `json:"type"`
	ScentFamily    ScentFamily    `json:"scentFamily"`
	Gender         Gender         `json:"gender"`
	Sizes          []Size         `json:"sizes"`
	FragranceNotes FragranceNotes `json:"fragranceNotes"`
	Images         []string       `json:"images"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"reviewCount"`
	InStock        bool           `json:"inStock"`
	ReleaseDate    *time.Time     `json:"releaseDate,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Date 接受 "2006-01-02" 或 RFC3339
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errs.BadRequest(fmt.Sprintf("invalid date %q", s))
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// CreatePerfume 新建入参（边界层已完成校验）
type CreatePerfume struct {
	Name           string          `json:"name"           binding:"required"`
	Brand          string          `json:"brand"          binding:"required"`
	Description    string          `json:"description"    binding:"required"`
	Price          *float64        `json:"price"          binding:"omitnil,gte=0"`
	Type           PerfumeType     `json:"type"           binding:"required"`
	ScentFamily    ScentFamily     `json:"scentFamily"    binding:"required"`
	Gender         Gender          `json:"gender"         binding:"required"`
	Sizes          []Size          `json:"sizes"          binding:"omitempty,dive"`
	FragranceNotes *FragranceNotes `json:"fragranceNotes" binding:"required"`
	Images         []string        `json:"images"`
	Rating         *float64        `json:"rating"         binding:"omitnil,gte=0,lte=5"`
	ReviewCount    *int            `json:"reviewCount"    binding:"omitnil,gte=0"`
	InStock        *bool           `json:"inStock"`
	ReleaseDate    *Date           `json:"releaseDate"`
}

// NewPerfume 按 schema 默认值补齐
func NewPerfume(in CreatePerfume) *Perfume {
	p := &Perfume{
		Name:        in.Name,
		Brand:       in.Brand,
		Description: in.Description,
		Price:       in.Price,
		Type:        in.Type,
		ScentFamily: in.ScentFamily,
		Gender:      in.Gender,
		Sizes:       in.Sizes,
		Images:      in.Images,
		InStock:     true,
		ReleaseDate: in.ReleaseDate.ptr(),
	}
	if in.FragranceNotes != nil {
		p.FragranceNotes = *in.FragranceNotes
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	p.Normalize()
	return p
}

// Normalize nil 切片统一为空切片，保证 JSON 输出 [] 而不是 null
func (p *Perfume) Normalize() {
	if p.Sizes == nil {
		p.Sizes = []Size{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.FragranceNotes.Top == nil {
		p.FragranceNotes.Top = []string{}
	}
	if p.FragranceNotes.Middle == nil {
		p.FragranceNotes.Middle = []string{}
	}
	if p.FragranceNotes.Base == nil {
		p.FragranceNotes.Base = []string{}
	}
}

// PerfumePatch 局部更新：nil 表示不改；数组整体替换
type PerfumePatch struct {
	Name           *string         `json:"name"           binding:"omitnil,min=1"`
	Brand          *string         `json:"brand"          binding:"omitnil,min=1"`
	Description    *string         `json:"description"    binding:"omitnil,min=1"`
	Price          *float64        `json:"price"          binding:"omitnil,gte=0"`
	Type           *PerfumeType    `json:"type"`
	ScentFamily    *ScentFamily    `json:"scentFamily"`
	Gender         *Gender         `json:"gender"`
	Sizes          *[]Size         `json:"sizes"          binding:"omitnil,dive"`
	FragranceNotes *FragranceNotes `json:"fragranceNotes"`
	Images         *[]string       `json:"images"`
	Rating         *float64        `json:"rating"         binding:"omitnil,gte=0,lte=5"`
	ReviewCount    *int            `json:"reviewCount"    binding:"omitnil,gte=0"`
	InStock        *bool           `json:"inStock"`
	ReleaseDate    *Date           `json:"releaseDate"`
}

func (u *PerfumePatch) Apply(p *Perfume) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		v := *u.Price
		p.Price = &v
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.ScentFamily != nil {
		p.ScentFamily = *u.ScentFamily
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Sizes != nil {
		p.Sizes = append([]Size(nil), (*u.Sizes)...)
	}
	if u.FragranceNotes != nil {
		p.FragranceNotes = *u.FragranceNotes
	}
	if u.Images != nil {
		p.Images = append([]string(nil), (*u.Images)...)
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	if u.ReviewCount != nil {
		p.ReviewCount = *u.ReviewCount
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if t := u.ReleaseDate.ptr(); t != nil {
		p.ReleaseDate = t
	}
	p.Normalize()
}

// ReleaseTime 供存储层取值
func (u *PerfumePatch) ReleaseTime() *time.Time { return u.ReleaseDate.ptr() }

// CatalogFilter 前台商品列表筛选
type CatalogFilter struct {
	ScentFamily ScentFamily
	Gender      Gender
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	SortField   string
	SortDesc    bool
	Limit       int
}

const DefaultCatalogSort = "-createdAt"

var sortable = map[string]struct{}{
	"createdAt": {}, "updatedAt": {}, "price": {}, "rating": {},
	"name": {}, "brand": {}, "reviewCount": {},
}

// ParseSort "-price" → (price, desc)；未知字段回退到 -createdAt
func ParseSort(s string) (field string, desc bool) {
	s = strings.TrimSpace(s)
	desc = strings.HasPrefix(s, "-")
	field = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if _, ok := sortable[field]; !ok {
		return "createdAt", true
	}
	return field, desc
}

// SearchTerms 按空白切分后转小写，供不支持全文索引的后端使用
func SearchTerms(q string) []string {
	return strings.Fields(strings.ToLower(q))
}
