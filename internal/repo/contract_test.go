package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentify/internal/domain"
)

func fp(v float64) *float64 { return &v }

func newPerfume(name, brand string, family domain.ScentFamily, gender domain.Gender, price *float64) *domain.Perfume {
	return domain.NewPerfume(domain.CreatePerfume{
		Name:           name,
		Brand:          brand,
		Description:    name + " by " + brand,
		Price:          price,
		Type:           domain.TypeEauDeParfum,
		ScentFamily:    family,
		Gender:         gender,
		FragranceNotes: &domain.FragranceNotes{Top: []string{"bergamot"}},
	})
}

// perfumeRepoContract 各后端共用的行为约束
func perfumeRepoContract(t *testing.T, r domain.PerfumeRepository) {
	ctx := context.Background()

	aqua := newPerfume("Aqua", "X", domain.FamilyFresh, domain.GenderUnisex, nil)
	require.NoError(t, r.Create(ctx, aqua))
	require.NotEmpty(t, aqua.ID)
	assert.False(t, aqua.CreatedAt.IsZero())

	got, err := r.FindByID(ctx, aqua.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Aqua", got.Name)
	assert.Equal(t, 0.0, got.Rating)
	assert.Equal(t, 0, got.ReviewCount)
	assert.True(t, got.InStock)
	assert.Equal(t, []string{}, got.Images)
	assert.Equal(t, []string{"bergamot"}, got.FragranceNotes.Top)
	assert.Equal(t, []string{}, got.FragranceNotes.Base)

	rose := newPerfume("Rose Noir", "Maison", domain.FamilyFloral, domain.GenderFemale, fp(120))
	oud := newPerfume("Oud Wood", "Maison", domain.FamilyWoody, domain.GenderMale, fp(250))
	require.NoError(t, r.Create(ctx, rose))
	require.NoError(t, r.Create(ctx, oud))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := r.FindAll(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	rest, err := r.FindAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	byBrand, err := r.FindByBrand(ctx, "Maison")
	require.NoError(t, err)
	assert.Len(t, byBrand, 2)

	none, err := r.FindByBrand(ctx, "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	woody, err := r.FindByScentFamily(ctx, domain.FamilyWoody)
	require.NoError(t, err)
	require.Len(t, woody, 1)
	assert.Equal(t, oud.ID, woody[0].ID)

	female, err := r.FindByGender(ctx, domain.GenderFemale)
	require.NoError(t, err)
	require.Len(t, female, 1)
	assert.Equal(t, rose.ID, female[0].ID)

	found, err := r.Search(ctx, "rose")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, rose.ID, found[0].ID)

	// 浏览：价格区间 + 排序 + 条数
	browse, err := r.Browse(ctx, domain.CatalogFilter{MinPrice: fp(100), SortField: "price", SortDesc: true, Limit: 50})
	require.NoError(t, err)
	require.Len(t, browse, 2)
	assert.Equal(t, oud.ID, browse[0].ID)
	assert.Equal(t, rose.ID, browse[1].ID)

	cheap, err := r.Browse(ctx, domain.CatalogFilter{MaxPrice: fp(200), Gender: domain.GenderFemale, SortField: "price"})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, rose.ID, cheap[0].ID)

	limited, err := r.Browse(ctx, domain.CatalogFilter{SortField: "name", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Aqua", limited[0].Name)

	// 局部更新：数组整体替换，其它字段不动
	imgs := []string{"https://img/1.jpg", "https://img/2.jpg"}
	price := 80.0
	upd, err := r.Update(ctx, aqua.ID, &domain.PerfumePatch{Images: &imgs, Price: &price})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, imgs, upd.Images)
	require.NotNil(t, upd.Price)
	assert.Equal(t, 80.0, *upd.Price)
	assert.Equal(t, "Aqua", upd.Name)
	assert.Equal(t, aqua.ID, upd.ID)

	again, err := r.FindByID(ctx, aqua.ID)
	require.NoError(t, err)
	assert.Equal(t, imgs, again.Images)

	missing, err := r.Update(ctx, "000000000000000000000000", &domain.PerfumePatch{Images: &imgs})
	require.NoError(t, err)
	assert.Nil(t, missing)

	del, err := r.Delete(ctx, aqua.ID)
	require.NoError(t, err)
	require.NotNil(t, del)
	assert.Equal(t, aqua.ID, del.ID)

	del, err = r.Delete(ctx, aqua.ID)
	require.NoError(t, err)
	assert.Nil(t, del)

	gone, err := r.FindByID(ctx, aqua.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func userRepoContract(t *testing.T, r domain.UserRepository) {
	ctx := context.Background()

	ann := domain.NewUser("Ann", "Lee", "  Ann@Example.com ", "hash-1")
	require.NoError(t, r.Create(ctx, ann))
	require.NotEmpty(t, ann.ID)
	assert.Equal(t, "ann@example.com", ann.Email)

	dup := domain.NewUser("Other", "Ann", "ANN@example.com", "hash-2")
	assert.ErrorIs(t, r.Create(ctx, dup), domain.ErrDuplicateEmail)

	got, err := r.FindByEmail(ctx, " ANN@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ann.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	for i := 0; i < 2; i++ {
		u := domain.NewUser("U", fmt.Sprint(i), fmt.Sprintf("u%d@x.io", i), "h")
		require.NoError(t, r.Create(ctx, u))
	}
	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admin := domain.RoleAdmin
	off := false
	upd, err := r.Update(ctx, ann.ID, &domain.UserPatch{Role: &admin, IsActive: &off})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, domain.RoleAdmin, upd.Role)
	assert.False(t, upd.IsActive)
	assert.Equal(t, "Ann", upd.FirstName)

	admins, err := r.FindByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	active, err := r.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	n, err := r.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	taken := "u0@X.io"
	_, err = r.Update(ctx, ann.ID, &domain.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	del, err := r.Delete(ctx, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, del)

	missing, err := r.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
