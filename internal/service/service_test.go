package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentify/internal/core/auth"
	"scentify/internal/core/errs"
	"scentify/internal/core/imagehost"
	"scentify/internal/domain"
	"scentify/internal/repo"
)

func aqua() domain.CreatePerfume {
	return domain.CreatePerfume{
		Name:           "Aqua",
		Brand:          "X",
		Description:    "fresh",
		Type:           domain.TypeEauDeToilette,
		ScentFamily:    domain.FamilyFresh,
		Gender:         domain.GenderUnisex,
		FragranceNotes: &domain.FragranceNotes{},
	}
}

func TestPerfumeServiceCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewPerfumeService(repo.NewPerfumeMemRepo())

	p, err := s.Create(ctx, aqua())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, 0, p.ReviewCount)
	assert.True(t, p.InStock)
	assert.Empty(t, p.Images)

	got, err := s.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.FindOne(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, "Perfume with ID missing not found", err.Error())
}

func TestPerfumeServiceFindAllPagination(t *testing.T) {
	ctx := context.Background()
	s := NewPerfumeService(repo.NewPerfumeMemRepo())
	for i := 0; i < 25; i++ {
		_, err := s.Create(ctx, aqua())
		require.NoError(t, err)
	}

	page, err := s.FindAll(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNextPage: true, HasPreviousPage: true}, page.Pagination)

	last, err := s.FindAll(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Data, 5)
	assert.False(t, last.Pagination.HasNextPage)

	beyond, err := s.FindAll(ctx, 9, 10)
	require.NoError(t, err)
	assert.NotNil(t, beyond.Data)
	assert.Empty(t, beyond.Data)
}

func TestPerfumeServiceRemove(t *testing.T) {
	ctx := context.Background()
	s := NewPerfumeService(repo.NewPerfumeMemRepo())
	p, err := s.Create(ctx, aqua())
	require.NoError(t, err)

	del, err := s.Remove(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aqua", del.Name)

	_, err = s.Remove(ctx, p.ID)
	assert.True(t, errs.IsNotFound(err))

	_, err = s.Update(ctx, p.ID, &domain.PerfumePatch{})
	assert.True(t, errs.IsNotFound(err))
}

type failingPerfumes struct {
	domain.PerfumeRepository
}

func (failingPerfumes) Count(context.Context) (int64, error) { return 0, errors.New("store down") }

func TestPerfumeServiceFindAllPropagatesStoreError(t *testing.T) {
	s := NewPerfumeService(failingPerfumes{repo.NewPerfumeMemRepo()})
	_, err := s.FindAll(context.Background(), 1, 10)
	assert.EqualError(t, err, "store down")
}

// fakeHost 记录上传/删除；failOn 命中文件名时上传失败
type fakeHost struct {
	mu      sync.Mutex
	failOn  string
	delErr  error
	deleted []string
}

func (h *fakeHost) Upload(_ context.Context, f imagehost.File, folder string) (string, error) {
	if f.Filename == h.failOn {
		return "", errors.New("host unavailable")
	}
	return "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + f.Filename, nil
}

func (h *fakeHost) Delete(_ context.Context, publicID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.delErr != nil {
		return h.delErr
	}
	h.deleted = append(h.deleted, publicID)
	return nil
}

func jpg(name string) imagehost.File {
	return imagehost.File{Filename: name, ContentType: "image/jpeg", Size: 1024, Body: strings.NewReader("x")}
}

func newImageService(t *testing.T, h *fakeHost) (*ImageService, *PerfumeService, *domain.Perfume) {
	t.Helper()
	ps := NewPerfumeService(repo.NewPerfumeMemRepo())
	in := aqua()
	in.Images = []string{"https://res.cloudinary.com/demo/image/upload/v1/perfumes/old.jpg"}
	p, err := ps.Create(context.Background(), in)
	require.NoError(t, err)
	return NewImageService(ps, h, imagehost.CloudinaryPublicID, UploadLimits{}, zap.NewNop()), ps, p
}

func TestImageUploadAppends(t *testing.T) {
	ctx := context.Background()
	is, ps, p := newImageService(t, &fakeHost{})

	res, err := is.Upload(ctx, p.ID, []imagehost.File{jpg("a.jpg"), jpg("b.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "Images uploaded successfully", res.Message)
	assert.Equal(t, 3, res.TotalImages)
	require.Len(t, res.Images, 2)
	assert.Contains(t, res.Images[0], "perfumes/"+p.ID+"/a.jpg")

	got, err := ps.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, append([]string{"https://res.cloudinary.com/demo/image/upload/v1/perfumes/old.jpg"}, res.Images...), got.Images)
}

func TestImageUploadAllOrNothing(t *testing.T) {
	ctx := context.Background()
	h := &fakeHost{failOn: "b.jpg"}
	is, ps, p := newImageService(t, h)

	_, err := is.Upload(ctx, p.ID, []imagehost.File{jpg("a.jpg"), jpg("b.jpg"), jpg("c.jpg")})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, errs.CodeOf(err))

	got, err := ps.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)

	// 已上传成功的被回删
	for _, id := range h.deleted {
		assert.True(t, strings.HasPrefix(id, "perfumes/"+p.ID+"/"))
		assert.False(t, strings.HasSuffix(id, "/b"))
	}
}

func TestImageUploadValidation(t *testing.T) {
	ctx := context.Background()
	is, _, p := newImageService(t, &fakeHost{})

	_, err := is.Upload(ctx, p.ID, nil)
	assert.Equal(t, http.StatusBadRequest, errs.CodeOf(err))

	gif := jpg("x.gif")
	gif.ContentType = "image/gif"
	_, err = is.Upload(ctx, p.ID, []imagehost.File{jpg("a.jpg"), gif})
	assert.Equal(t, http.StatusBadRequest, errs.CodeOf(err))

	big := jpg("big.jpg")
	big.Size = 11 << 20
	_, err = is.Upload(ctx, p.ID, []imagehost.File{big})
	assert.Equal(t, http.StatusBadRequest, errs.CodeOf(err))

	many := make([]imagehost.File, 11)
	for i := range many {
		many[i] = jpg("f.jpg")
	}
	_, err = is.Upload(ctx, p.ID, many)
	assert.Equal(t, http.StatusBadRequest, errs.CodeOf(err))

	_, err = is.Upload(ctx, "nope", []imagehost.File{jpg("a.jpg")})
	assert.True(t, errs.IsNotFound(err))
}

func TestImageRemove(t *testing.T) {
	ctx := context.Background()
	h := &fakeHost{}
	is, ps, p := newImageService(t, h)
	url := p.Images[0]

	res, err := is.Remove(ctx, p.ID, url)
	require.NoError(t, err)
	assert.Equal(t, "Image deleted successfully", res.Message)
	assert.Equal(t, 0, res.RemainingImages)
	assert.Equal(t, []string{"perfumes/old"}, h.deleted)

	got, err := ps.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestImageRemoveAbsentURLIsNoop(t *testing.T) {
	ctx := context.Background()
	is, ps, p := newImageService(t, &fakeHost{})

	res, err := is.Remove(ctx, p.ID, "https://res.cloudinary.com/demo/image/upload/v1/perfumes/other.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemainingImages)

	got, err := ps.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Images, got.Images)
	assert.Equal(t, p.UpdatedAt, got.UpdatedAt)
}

func TestImageRemoveHostFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	is, ps, p := newImageService(t, &fakeHost{delErr: errors.New("503")})

	_, err := is.Remove(ctx, p.ID, p.Images[0])
	require.Error(t, err)
	assert.Equal(t, "Failed to delete image", err.Error())

	got, err := ps.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	users := repo.NewUserMemRepo()
	s := NewUserService(users)

	a := domain.NewUser("Ann", "Lee", "ann@x.io", "h")
	b := domain.NewUser("Bob", "Ray", "bob@x.io", "h")
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	_, err := s.FindOne(ctx, "missing")
	assert.EqualError(t, err, "User with ID missing not found")

	taken := "ANN@x.io"
	_, err = s.Update(ctx, b.ID, &domain.UserPatch{Email: &taken})
	assert.True(t, errs.IsConflict(err))

	role := domain.RoleAdmin
	u, err := s.Update(ctx, b.ID, &domain.UserPatch{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	admins, err := s.FindByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = s.Remove(ctx, a.ID)
	require.NoError(t, err)
	_, err = s.Remove(ctx, a.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	users := repo.NewUserMemRepo()
	j := auth.NewJWTer("secret", "scentify", 0)
	s := NewAuthService(users, j, zap.NewNop())

	res, err := s.Signup(ctx, SignupInput{FirstName: "Ann", LastName: "Lee", Email: "Ann@X.io", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", res.User.Email)
	assert.NotEmpty(t, res.Token)

	claims, err := s.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "ann@x.io", claims.Email)

	_, err = s.Signup(ctx, SignupInput{FirstName: "A", LastName: "B", Email: "ann@x.io", Password: "password2"})
	assert.True(t, errs.IsConflict(err))
	assert.EqualError(t, err, "Email already exists")

	_, err = s.Signin(ctx, SigninInput{Email: "ann@x.io", Password: "wrong-pass"})
	assert.EqualError(t, err, "Invalid email or password")
	_, err = s.Signin(ctx, SigninInput{Email: "nobody@x.io", Password: "password1"})
	assert.EqualError(t, err, "Invalid email or password")

	in, err := s.Signin(ctx, SigninInput{Email: " ANN@x.io", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, res.User, in.User)

	stored, err := users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
	assert.NotEqual(t, "password1", stored.PasswordHash)

	me, err := s.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User, *me)

	_, err = s.Verify("garbage")
	assert.True(t, errs.IsUnauthorized(err))
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	perfumes := repo.NewPerfumeMemRepo()
	users := repo.NewUserMemRepo()
	ps := NewPerfumeService(perfumes)
	for i := 0; i < 3; i++ {
		_, err := ps.Create(ctx, aqua())
		require.NoError(t, err)
	}
	require.NoError(t, users.Create(ctx, domain.NewUser("A", "B", "a@x.io", "h")))
	off := domain.NewUser("C", "D", "c@x.io", "h")
	off.IsActive = false
	require.NoError(t, users.Create(ctx, off))

	st, err := NewDashboardService(perfumes, users).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalProducts: 3, ActiveUsers: 1}, st)
}

// slowCount 阻塞在 Count 上，用来观察合并效果
type slowCount struct {
	domain.PerfumeRepository
	calls   int
	mu      sync.Mutex
	release chan struct{}
}

func (r *slowCount) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case <-r.release:
		return 7, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *slowCount) started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls > 0
}

func TestDashboardStatsCoalesced(t *testing.T) {
	ctx := context.Background()
	perfumes := &slowCount{PerfumeRepository: repo.NewPerfumeMemRepo(), release: make(chan struct{})}
	s := NewDashboardService(perfumes, repo.NewUserMemRepo())

	var wg sync.WaitGroup
	results := make([]*Stats, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := s.Stats(ctx)
			assert.NoError(t, err)
			results[i] = st
		}()
	}
	// 等第一个调用进入 Count 后再放行
	require.Eventually(t, perfumes.started, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(perfumes.release)
	wg.Wait()

	assert.Less(t, perfumes.calls, 5)
	for _, st := range results {
		require.NotNil(t, st)
		assert.Equal(t, int64(7), st.TotalProducts)
	}
	// 返回的是副本
	results[0].TotalProducts = 1
	assert.Equal(t, int64(7), results[1].TotalProducts)
}

func TestDashboardStatsFirstCallerCanceled(t *testing.T) {
	perfumes := &slowCount{PerfumeRepository: repo.NewPerfumeMemRepo(), release: make(chan struct{})}
	s := NewDashboardService(perfumes, repo.NewUserMemRepo())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Stats(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, perfumes.started, time.Second, time.Millisecond)

	type result struct {
		st  *Stats
		err error
	}
	second := make(chan result, 1)
	go func() {
		st, err := s.Stats(context.Background())
		second <- result{st, err}
	}()
	time.Sleep(20 * time.Millisecond)

	// 第一个调用方断开，只影响它自己
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(perfumes.release)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, int64(7), r.st.TotalProducts)
	assert.Equal(t, 1, perfumes.calls)
}
