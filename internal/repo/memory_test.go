package repo

import (
	"testing"
	"time"
)

// tick 单调递增时钟，保证按创建时间排序稳定
func tick() func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestPerfumeMemRepo(t *testing.T) {
	r := NewPerfumeMemRepo()
	r.now = tick()
	perfumeRepoContract(t, r)
}

func TestUserMemRepo(t *testing.T) {
	r := NewUserMemRepo()
	r.now = tick()
	userRepoContract(t, r)
}
