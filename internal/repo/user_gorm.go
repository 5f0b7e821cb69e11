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

type userRow struct {
	ID           string `gorm:"primaryKey;type:varchar(32)"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;index"`
	IsActive     bool   `gorm:"not null;index"`
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func toUserRow(u *domain.User) *userRow {
	return &userRow{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *userRow) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		IsActive:     m.IsActive,
		LastLogin:    m.LastLogin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 时各驱动报错文本不同
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

type UserGormRepo struct{ db *gorm.DB }

func NewUserGormRepo(db *gorm.DB) *UserGormRepo { return &UserGormRepo{db: db} }

func (r *UserGormRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	var rows []userRow
	tx := r.db.WithContext(ctx).Order("created_at desc")
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *UserGormRepo) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var m userRow
	err := r.db.WithContext(ctx).First(&m, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := m.toDomain()
	return &u, nil
}

func (r *UserGormRepo) FindAll(ctx context.Context) ([]domain.User, error) { return r.list(ctx, "") }

func (r *UserGormRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserGormRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *UserGormRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.ID = utils.NewID()
	u.Email = domain.NormalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(toUserRow(u)).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserGormRepo) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if u == nil || err != nil {
		return nil, err
	}
	patch.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&userRow{ID: id}).Select("*").Updates(toUserRow(u))
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return u, nil
}

func (r *UserGormRepo) Delete(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if u == nil || err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&userRow{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserGormRepo) FindActive(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, "is_active = ?", true)
}

func (r *UserGormRepo) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.list(ctx, "role = ?", string(role))
}

func (r *UserGormRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userRow{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

// AutoMigrate 建表及索引
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&perfumeRow{}, &userRow{})
}
