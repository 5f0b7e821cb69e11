package domain

import (
	"context"
	"errors"
)

// ErrDuplicateEmail 唯一索引冲突，由各存储实现翻译
var ErrDuplicateEmail = errors.New("duplicate email")

// PerfumeRepository 查不到时返回 (nil, nil)，存储错误原样上抛
type PerfumeRepository interface {
	FindAll(ctx context.Context, skip, limit int) ([]Perfume, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id string) (*Perfume, error)
	// Create 回填 ID 与时间戳
	Create(ctx context.Context, p *Perfume) error
	Update(ctx context.Context, id string, patch *PerfumePatch) (*Perfume, error)
	Delete(ctx context.Context, id string) (*Perfume, error)
	FindByBrand(ctx context.Context, brand string) ([]Perfume, error)
	FindByScentFamily(ctx context.Context, family ScentFamily) ([]Perfume, error)
	FindByGender(ctx context.Context, gender Gender) ([]Perfume, error)
	Search(ctx context.Context, q string) ([]Perfume, error)
	Browse(ctx context.Context, f CatalogFilter) ([]Perfume, error)
}

type UserRepository interface {
	FindAll(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, patch *UserPatch) (*User, error)
	Delete(ctx context.Context, id string) (*User, error)
	FindActive(ctx context.Context) ([]User, error)
	FindByRole(ctx context.Context, role Role) ([]User, error)
	CountActive(ctx context.Context) (int64, error)
}
