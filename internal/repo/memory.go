package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"scentify/internal/domain"
	"scentify/pkg/utils"
)

// PerfumeMemRepo 进程内实现，dev/test 用
type PerfumeMemRepo struct {
	mu   sync.RWMutex
	rows map[string]*domain.Perfume
	now  func() time.Time
}

func NewPerfumeMemRepo() *PerfumeMemRepo {
	return &PerfumeMemRepo{rows: map[string]*domain.Perfume{}, now: time.Now}
}

func clonePerfume(p *domain.Perfume) domain.Perfume {
	c := *p
	c.Sizes = append([]domain.Size{}, p.Sizes...)
	c.Images = append([]string{}, p.Images...)
	c.FragranceNotes.Top = append([]string{}, p.FragranceNotes.Top...)
	c.FragranceNotes.Middle = append([]string{}, p.FragranceNotes.Middle...)
	c.FragranceNotes.Base = append([]string{}, p.FragranceNotes.Base...)
	return c
}

// sorted 默认按创建时间倒序
func (r *PerfumeMemRepo) sorted(keep func(*domain.Perfume) bool) []domain.Perfume {
	out := []domain.Perfume{}
	for _, p := range r.rows {
		if keep == nil || keep(p) {
			out = append(out, clonePerfume(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *PerfumeMemRepo) FindAll(_ context.Context, skip, limit int) ([]domain.Perfume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted(nil)
	if skip >= len(all) {
		return []domain.Perfume{}, nil
	}
	end := len(all)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return all[skip:end], nil
}

func (r *PerfumeMemRepo) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

func (r *PerfumeMemRepo) FindByID(_ context.Context, id string) (*domain.Perfume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	c := clonePerfume(p)
	return &c, nil
}

func (r *PerfumeMemRepo) Create(_ context.Context, p *domain.Perfume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	p.ID = utils.NewID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Normalize()
	c := clonePerfume(p)
	r.rows[p.ID] = &c
	return nil
}

func (r *PerfumeMemRepo) Update(_ context.Context, id string, patch *domain.PerfumePatch) (*domain.Perfume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(p)
	p.UpdatedAt = r.now().UTC()
	c := clonePerfume(p)
	return &c, nil
}

func (r *PerfumeMemRepo) Delete(_ context.Context, id string) (*domain.Perfume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	delete(r.rows, id)
	c := clonePerfume(p)
	return &c, nil
}

func (r *PerfumeMemRepo) FindByBrand(_ context.Context, brand string) ([]domain.Perfume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(p *domain.Perfume) bool { return p.Brand == brand }), nil
}

func (r *PerfumeMemRepo) FindByScentFamily(_ context.Context, f domain.ScentFamily) ([]domain.Perfume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(p *domain.Perfume) bool { return p.ScentFamily == f }), nil
}

func (r *PerfumeMemRepo) FindByGender(_ context.Context, g domain.Gender) ([]domain.Perfume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(p *domain.Perfume) bool { return p.Gender == g }), nil
}

// matchText 任一词命中 name/brand/description 即可
func matchText(p *domain.Perfume, terms []string) bool {
	hay := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
	for _, t := range terms {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}

func (r *PerfumeMemRepo) Search(_ context.Context, q string) ([]domain.Perfume, error) {
	terms := domain.SearchTerms(q)
	if len(terms) == 0 {
		return []domain.Perfume{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(p *domain.Perfume) bool { return matchText(p, terms) }), nil
}

func (r *PerfumeMemRepo) Browse(_ context.Context, f domain.CatalogFilter) ([]domain.Perfume, error) {
	terms := domain.SearchTerms(f.Search)
	r.mu.RLock()
	out := r.sorted(func(p *domain.Perfume) bool {
		if f.ScentFamily != "" && p.ScentFamily != f.ScentFamily {
			return false
		}
		if f.Gender != "" && p.Gender != f.Gender {
			return false
		}
		if f.MinPrice != nil && (p.Price == nil || *p.Price < *f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && (p.Price == nil || *p.Price > *f.MaxPrice) {
			return false
		}
		return len(terms) == 0 || matchText(p, terms)
	})
	r.mu.RUnlock()

	less := perfumeLess(f.SortField)
	sort.SliceStable(out, func(i, j int) bool {
		if f.SortDesc {
			return less(&out[j], &out[i])
		}
		return less(&out[i], &out[j])
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func perfumeLess(field string) func(a, b *domain.Perfume) bool {
	price := func(p *domain.Perfume) float64 {
		if p.Price == nil {
			return 0
		}
		return *p.Price
	}
	switch field {
	case "price":
		return func(a, b *domain.Perfume) bool { return price(a) < price(b) }
	case "rating":
		return func(a, b *domain.Perfume) bool { return a.Rating < b.Rating }
	case "reviewCount":
		return func(a, b *domain.Perfume) bool { return a.ReviewCount < b.ReviewCount }
	case "name":
		return func(a, b *domain.Perfume) bool { return a.Name < b.Name }
	case "brand":
		return func(a, b *domain.Perfume) bool { return a.Brand < b.Brand }
	case "updatedAt":
		return func(a, b *domain.Perfume) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	return func(a, b *domain.Perfume) bool { return a.CreatedAt.Before(b.CreatedAt) }
}

type UserMemRepo struct {
	mu   sync.RWMutex
	rows map[string]*domain.User
	now  func() time.Time
}

func NewUserMemRepo() *UserMemRepo {
	return &UserMemRepo{rows: map[string]*domain.User{}, now: time.Now}
}

func (r *UserMemRepo) list(keep func(*domain.User) bool) []domain.User {
	out := []domain.User{}
	for _, u := range r.rows {
		if keep == nil || keep(u) {
			out = append(out, *u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *UserMemRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.rows {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserMemRepo) FindAll(context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(nil), nil
}

func (r *UserMemRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserMemRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserMemRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = domain.NormalizeEmail(u.Email)
	if r.emailTaken(u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	now := r.now().UTC()
	u.ID = utils.NewID()
	u.CreatedAt, u.UpdatedAt = now, now
	c := *u
	r.rows[u.ID] = &c
	return nil
}

func (r *UserMemRepo) Update(_ context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	next := *u
	patch.Apply(&next)
	if next.Email != u.Email && r.emailTaken(next.Email, id) {
		return nil, domain.ErrDuplicateEmail
	}
	next.UpdatedAt = r.now().UTC()
	*u = next
	return &next, nil
}

func (r *UserMemRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	delete(r.rows, id)
	return u, nil
}

func (r *UserMemRepo) FindActive(context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(u *domain.User) bool { return u.IsActive }), nil
}

func (r *UserMemRepo) FindByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(u *domain.User) bool { return u.Role == role }), nil
}

func (r *UserMemRepo) CountActive(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.rows {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}
