package service

import (
	"context"
	"errors"

	"scentify/internal/core/errs"
	"scentify/internal/domain"
)

// UserService 管理端用户；无创建入口，用户只能经注册产生
type UserService struct {
	repo domain.UserRepository
}

func NewUserService(r domain.UserRepository) *UserService { return &UserService{repo: r} }

func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) { return s.repo.FindAll(ctx) }

func (s *UserService) FindOne(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User", id)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	u, err := s.repo.Update(ctx, id, patch)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, errs.Conflict("Email already exists")
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User", id)
	}
	return u, nil
}

func (s *UserService) Remove(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User", id)
	}
	return u, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) FindActive(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindActive(ctx)
}

func (s *UserService) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return s.repo.FindByRole(ctx, role)
}
