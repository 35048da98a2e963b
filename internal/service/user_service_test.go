package service

import (
	"context"
	"testing"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/internal/testutil"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_List(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Mine", testutil.Published)
	testutil.CreateComment(t, f.db, article.ID, f.bob.ID, "nice")
	testutil.CreateLike(t, f.db, article.ID, f.bob.ID)

	_, err := f.svc.Users.List(ctx, f.as(f.alice), dto.UserQuery{})
	requireKind(t, err, KindForbidden)

	res, err := f.svc.Users.List(ctx, f.as(f.admin), dto.UserQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Pagination.Total)

	res, err = f.svc.Users.List(ctx, f.as(f.admin), dto.UserQuery{Search: "BOB"})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	bob := res.Users[0]
	require.NotNil(t, bob.Count)
	assert.Equal(t, dto.UserCounts{Articles: 0, Comments: 1, Likes: 1}, *bob.Count)

	res, err = f.svc.Users.List(ctx, f.as(f.admin), dto.UserQuery{Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, f.admin.ID, res.Users[0].ID)
}

func TestUserService_GetAccess(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Users.Get(ctx, f.as(f.alice), f.bob.ID)
	requireKind(t, err, KindForbidden)

	me, err := f.svc.Users.Me(ctx, f.as(f.alice))
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, me.ID)

	_, err = f.svc.Users.Me(ctx, Caller{})
	requireKind(t, err, KindUnauthenticated)

	_, err = f.svc.Users.Get(ctx, f.as(f.admin), 999)
	requireKind(t, err, KindNotFound)
}

func TestUserService_Update(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Users.Update(ctx, f.as(f.alice), f.alice.ID, &dto.UserUpdateRequest{Role: strPtr(model.RoleAdmin)})
	requireKind(t, err, KindForbidden)

	_, err = f.svc.Users.Update(ctx, f.as(f.alice), f.alice.ID, &dto.UserUpdateRequest{IsActive: boolPtr(false)})
	requireKind(t, err, KindForbidden)

	_, err = f.svc.Users.Update(ctx, f.as(f.alice), f.alice.ID, &dto.UserUpdateRequest{Email: strPtr("BOB@example.com")})
	requireKind(t, err, KindConflict)

	item, err := f.svc.Users.Update(ctx, f.as(f.alice), f.alice.ID, &dto.UserUpdateRequest{
		Name: strPtr("Alice Liddell"),
		Bio:  strPtr("Down the rabbit hole"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", item.Name)
	assert.Equal(t, "Down the rabbit hole", item.Bio)

	item, err = f.svc.Users.Update(ctx, f.as(f.admin), f.alice.ID, &dto.UserUpdateRequest{Role: strPtr(model.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, item.Role)
}

func TestUserService_UpdatePasswordAllowsLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Users.Update(ctx, f.as(f.alice), f.alice.ID, &dto.UserUpdateRequest{Password: strPtr("new-password")})
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(ctx, &dto.LoginRequest{Email: f.alice.Email, Password: "new-password"})
	require.NoError(t, err)
}

func TestUserService_DeleteCascades(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	aliceArticle := testutil.CreateArticle(t, f.db, f.alice.ID, "Alice Writes", testutil.Published)
	bobArticle := testutil.CreateArticle(t, f.db, f.bob.ID, "Bob Writes", testutil.Published)
	testutil.CreateComment(t, f.db, aliceArticle.ID, f.bob.ID, "on alice")
	testutil.CreateComment(t, f.db, bobArticle.ID, f.alice.ID, "alice on bob")
	testutil.CreateComment(t, f.db, bobArticle.ID, f.bob.ID, "bob on bob")
	testutil.CreateLike(t, f.db, bobArticle.ID, f.alice.ID)
	testutil.CreateLike(t, f.db, aliceArticle.ID, f.bob.ID)

	requireKind(t, f.svc.Users.Delete(ctx, f.as(f.bob), f.alice.ID), KindForbidden)
	require.NoError(t, f.svc.Users.Delete(ctx, f.as(f.admin), f.alice.ID))

	count := func(value interface{}) int64 {
		var n int64
		require.NoError(t, f.db.Model(value).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(&model.Article{}))
	assert.Equal(t, int64(1), count(&model.Comment{}), "only bob's comment on his own article is left")
	assert.Zero(t, count(&model.Like{}))
	assert.Equal(t, int64(2), count(&model.User{}))

	requireKind(t, f.svc.Users.Delete(ctx, f.as(f.admin), f.alice.ID), KindNotFound)
}

func TestUserService_DeleteInvalidatesArticleCaches(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	f := newFixture(t, cache.NewRedisCache(client))
	ctx := context.Background()
	category := testutil.CreateCategory(t, f.db, "Essays")
	testutil.CreateArticle(t, f.db, f.alice.ID, "Alice Star", testutil.Published, testutil.Featured,
		testutil.WithCategories(*category))

	items, err := f.svc.Articles.Featured(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	categories, err := f.svc.Categories.List(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), categories[0].Count.Articles)

	require.NoError(t, f.svc.Users.Delete(ctx, f.as(f.admin), f.alice.ID))
	assert.False(t, mr.Exists(cache.FeaturedKey(defaultFeaturedLimit)))
	assert.False(t, mr.Exists(cache.CategoryListKey))

	items, err = f.svc.Articles.Featured(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	categories, err = f.svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, categories[0].Count.Articles)
}

func TestUserService_CommandHelpers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	admin, err := f.svc.Users.CreateAdmin(ctx, "Root", "root@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	require.NoError(t, f.svc.Users.SetRole(ctx, "ROOT@example.com", model.RoleUser))
	requireKind(t, f.svc.Users.SetRole(ctx, "root@example.com", "OWNER"), KindValidation)
	requireKind(t, f.svc.Users.SetActive(ctx, "missing@example.com", false), KindNotFound)

	var stored model.User
	require.NoError(t, f.db.First(&stored, admin.ID).Error)
	assert.Equal(t, model.RoleUser, stored.Role)
}
