package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"scentify/internal/domain"
	"scentify/pkg/utils"
)

type perfumeRow struct {
	ID             string                `gorm:"primaryKey;type:varchar(32)"`
	Name           string                `gorm:"size:255;not null"`
	Brand          string                `gorm:"size:255;not null;index"`
	Description    string                `gorm:"type:text;not null"`
	Price          *float64              `gorm:"index"`
	Type           string                `gorm:"size:32;not null"`
	ScentFamily    string                `gorm:"size:32;not null;index"`
	Gender         string                `gorm:"size:16;not null;index"`
	Sizes          []domain.Size         `gorm:"serializer:json;type:text"`
	FragranceNotes domain.FragranceNotes `gorm:"serializer:json;type:text"`
	Images         []string              `gorm:"serializer:json;type:text"`
	Rating         float64               `gorm:"not null;index:idx_perfumes_rating,sort:desc"`
	ReviewCount    int                   `gorm:"not null"`
	InStock        bool                  `gorm:"not null"`
	ReleaseDate    *time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (perfumeRow) TableName() string { return "perfumes" }

func toPerfumeRow(p *domain.Perfume) *perfumeRow {
	return &perfumeRow{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.Brand,
		Description:    p.Description,
		Price:          p.Price,
		Type:           string(p.Type),
		ScentFamily:    string(p.ScentFamily),
		Gender:         string(p.Gender),
		Sizes:          p.Sizes,
		FragranceNotes: p.FragranceNotes,
		Images:         p.Images,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		InStock:        p.InStock,
		ReleaseDate:    p.ReleaseDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *perfumeRow) toDomain() domain.Perfume {
	p := domain.Perfume{
		ID:             m.ID,
		Name:           m.Name,
		Brand:          m.Brand,
		Description:    m.Description,
		Price:          m.Price,
		Type:           domain.PerfumeType(m.Type),
		ScentFamily:    domain.ScentFamily(m.ScentFamily),
		Gender:         domain.Gender(m.Gender),
		Sizes:          m.Sizes,
		FragranceNotes: m.FragranceNotes,
		Images:         m.Images,
		Rating:         m.Rating,
		ReviewCount:    m.ReviewCount,
		InStock:        m.InStock,
		ReleaseDate:    m.ReleaseDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	p.Normalize()
	return p
}

func perfumeRows(rows []perfumeRow) []domain.Perfume {
	out := make([]domain.Perfume, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

// sortColumns 排序白名单 → 列名
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"price":       "price",
	"rating":      "rating",
	"name":        "name",
	"brand":       "brand",
	"reviewCount": "review_count",
}

type PerfumeGormRepo struct{ db *gorm.DB }

func NewPerfumeGormRepo(db *gorm.DB) *PerfumeGormRepo { return &PerfumeGormRepo{db: db} }

func (r *PerfumeGormRepo) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Perfume, error) {
	var rows []perfumeRow
	tx := r.db.WithContext(ctx).Model(&perfumeRow{})
	if scope != nil {
		tx = scope(tx)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return perfumeRows(rows), nil
}

func newestFirst(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc") }

func (r *PerfumeGormRepo) FindAll(ctx context.Context, skip, limit int) ([]domain.Perfume, error) {
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB {
		return newestFirst(tx).Offset(skip).Limit(limit)
	})
}

func (r *PerfumeGormRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&perfumeRow{}).Count(&total).Error
	return total, err
}

func (r *PerfumeGormRepo) first(ctx context.Context, id string) (*perfumeRow, error) {
	var m perfumeRow
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PerfumeGormRepo) FindByID(ctx context.Context, id string) (*domain.Perfume, error) {
	m, err := r.first(ctx, id)
	if m == nil || err != nil {
		return nil, err
	}
	p := m.toDomain()
	return &p, nil
}

func (r *PerfumeGormRepo) Create(ctx context.Context, p *domain.Perfume) error {
	now := time.Now().UTC()
	p.ID = utils.NewID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Normalize()
	return r.db.WithContext(ctx).Create(toPerfumeRow(p)).Error
}

// Update 读改写两步，后写覆盖；只 UPDATE 不 upsert，中途被删则视为不存在
func (r *PerfumeGormRepo) Update(ctx context.Context, id string, patch *domain.PerfumePatch) (*domain.Perfume, error) {
	m, err := r.first(ctx, id)
	if m == nil || err != nil {
		return nil, err
	}
	p := m.toDomain()
	patch.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&perfumeRow{ID: id}).Select("*").Updates(toPerfumeRow(&p))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *PerfumeGormRepo) Delete(ctx context.Context, id string) (*domain.Perfume, error) {
	m, err := r.first(ctx, id)
	if m == nil || err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&perfumeRow{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	p := m.toDomain()
	return &p, nil
}

func (r *PerfumeGormRepo) FindByBrand(ctx context.Context, brand string) ([]domain.Perfume, error) {
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB { return newestFirst(tx.Where("brand = ?", brand)) })
}

func (r *PerfumeGormRepo) FindByScentFamily(ctx context.Context, f domain.ScentFamily) ([]domain.Perfume, error) {
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB { return newestFirst(tx.Where("scent_family = ?", string(f))) })
}

func (r *PerfumeGormRepo) FindByGender(ctx context.Context, g domain.Gender) ([]domain.Perfume, error) {
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB { return newestFirst(tx.Where("gender = ?", string(g))) })
}

// textMatch 任一词命中 name/brand/description
func textMatch(tx *gorm.DB, terms []string) *gorm.DB {
	conds := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms)*3)
	for _, t := range terms {
		like := "%" + t + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, like, like, like)
	}
	return tx.Where(strings.Join(conds, " OR "), args...)
}

func (r *PerfumeGormRepo) Search(ctx context.Context, q string) ([]domain.Perfume, error) {
	terms := domain.SearchTerms(q)
	if len(terms) == 0 {
		return []domain.Perfume{}, nil
	}
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB { return newestFirst(textMatch(tx, terms)) })
}

func (r *PerfumeGormRepo) Browse(ctx context.Context, f domain.CatalogFilter) ([]domain.Perfume, error) {
	return r.list(ctx, func(tx *gorm.DB) *gorm.DB {
		if f.ScentFamily != "" {
			tx = tx.Where("scent_family = ?", string(f.ScentFamily))
		}
		if f.Gender != "" {
			tx = tx.Where("gender = ?", string(f.Gender))
		}
		if f.MinPrice != nil {
			tx = tx.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			tx = tx.Where("price <= ?", *f.MaxPrice)
		}
		if terms := domain.SearchTerms(f.Search); len(terms) > 0 {
			tx = textMatch(tx, terms)
		}
		col, ok := sortColumns[f.SortField]
		if !ok {
			col, f.SortDesc = "created_at", true
		}
		if f.SortDesc {
			col += " desc"
		}
		tx = tx.Order(col)
		if f.Limit > 0 {
			tx = tx.Limit(f.Limit)
		}
		return tx
	})
}
