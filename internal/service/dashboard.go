package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"scentify/internal/domain"
)

// 合并后的回源脱离调用方 ctx，单独限时
const statsLoadTimeout = 10 * time.Second

type Stats struct {
	TotalProducts int64 `json:"totalProducts"`
	ActiveUsers   int64 `json:"activeUsers"`
}

type DashboardService struct {
	perfumes domain.PerfumeRepository
	users    domain.UserRepository
	sf       singleflight.Group
}

func NewDashboardService(p domain.PerfumeRepository, u domain.UserRepository) *DashboardService {
	return &DashboardService{perfumes: p, users: u}
}

// Stats 并发请求合并为一次回源，不缓存结果
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	ch := s.sf.DoChan("stats", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
		defer cancel()
		return s.load(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		st := *r.Val.(*Stats)
		return &st, nil
	}
}

func (s *DashboardService) load(ctx context.Context) (*Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalProducts, err = s.perfumes.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.ActiveUsers, err = s.users.CountActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
