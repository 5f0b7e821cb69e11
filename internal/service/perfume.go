package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"scentify/internal/core/errs"
	"scentify/internal/domain"
)

type PerfumeService struct {
	repo domain.PerfumeRepository
}

func NewPerfumeService(r domain.PerfumeRepository) *PerfumeService {
	return &PerfumeService{repo: r}
}

func (s *PerfumeService) Create(ctx context.Context, in domain.CreatePerfume) (*domain.Perfume, error) {
	p := domain.NewPerfume(in)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindAll page/limit 由 handler 归一为正数；列表与总数并发查询
func (s *PerfumeService) FindAll(ctx context.Context, page, limit int) (*domain.Page[domain.Perfume], error) {
	var (
		items []domain.Perfume
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.repo.FindAll(gctx, domain.Skip(page, limit), limit)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Perfume{}
	}
	return &domain.Page[domain.Perfume]{Data: items, Pagination: domain.NewPagination(page, limit, total)}, nil
}

func (s *PerfumeService) FindOne(ctx context.Context, id string) (*domain.Perfume, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.NotFound("Perfume", id)
	}
	return p, nil
}

func (s *PerfumeService) Update(ctx context.Context, id string, patch *domain.PerfumePatch) (*domain.Perfume, error) {
	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.NotFound("Perfume", id)
	}
	return p, nil
}

// Remove 返回被删除的快照
func (s *PerfumeService) Remove(ctx context.Context, id string) (*domain.Perfume, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.NotFound("Perfume", id)
	}
	return p, nil
}

func (s *PerfumeService) FindByBrand(ctx context.Context, brand string) ([]domain.Perfume, error) {
	return s.repo.FindByBrand(ctx, brand)
}

func (s *PerfumeService) FindByScentFamily(ctx context.Context, f domain.ScentFamily) ([]domain.Perfume, error) {
	return s.repo.FindByScentFamily(ctx, f)
}

func (s *PerfumeService) FindByGender(ctx context.Context, g domain.Gender) ([]domain.Perfume, error) {
	return s.repo.FindByGender(ctx, g)
}

func (s *PerfumeService) Search(ctx context.Context, q string) ([]domain.Perfume, error) {
	return s.repo.Search(ctx, q)
}

func (s *PerfumeService) Browse(ctx context.Context, f domain.CatalogFilter) ([]domain.Perfume, error) {
	return s.repo.Browse(ctx, f)
}
