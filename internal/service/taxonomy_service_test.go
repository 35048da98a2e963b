package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/internal/testutil"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Categories.Create(ctx, Caller{}, &dto.CategoryCreateRequest{Name: "Go"})
	requireKind(t, err, KindUnauthenticated)
	_, err = f.svc.Categories.Create(ctx, f.as(f.alice), &dto.CategoryCreateRequest{Name: "Go"})
	requireKind(t, err, KindForbidden)

	item, err := f.svc.Categories.Create(ctx, f.as(f.admin), &dto.CategoryCreateRequest{
		Name:        " Web Development ",
		Description: "Frontend and backend",
	})
	require.NoError(t, err)
	assert.Equal(t, "Web Development", item.Name)
	assert.Equal(t, "web-development", item.Slug)
	assert.Zero(t, item.Count.Articles)

	// 名称不同但slug相同
	_, err = f.svc.Categories.Create(ctx, f.as(f.admin), &dto.CategoryCreateRequest{Name: "web development!"})
	requireKind(t, err, KindConflict)

	_, err = f.svc.Categories.Create(ctx, f.as(f.admin), &dto.CategoryCreateRequest{Name: "编程"})
	requireKind(t, err, KindValidation)

	// 去掉空白后长度不足
	_, err = f.svc.Categories.Create(ctx, f.as(f.admin), &dto.CategoryCreateRequest{Name: "   x   "})
	requireKind(t, err, KindValidation)
	_, err = f.svc.Tags.Create(ctx, f.as(f.admin), &dto.TagCreateRequest{Name: "  y  "})
	requireKind(t, err, KindValidation)
	_, err = f.svc.Categories.Update(ctx, f.as(f.admin), item.Slug, &dto.CategoryUpdateRequest{Name: strPtr(" z ")})
	requireKind(t, err, KindValidation)
}

func TestCategoryService_UpdateRename(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	golang := testutil.CreateCategory(t, f.db, "Golang")
	testutil.CreateCategory(t, f.db, "Rust")

	_, err := f.svc.Categories.Update(ctx, f.as(f.admin), golang.Slug, &dto.CategoryUpdateRequest{Name: strPtr("Rust")})
	requireKind(t, err, KindConflict)

	item, err := f.svc.Categories.Update(ctx, f.as(f.admin), golang.Slug, &dto.CategoryUpdateRequest{
		Name:        strPtr("Go Language"),
		Description: strPtr("All about Go"),
	})
	require.NoError(t, err)
	assert.Equal(t, "go-language", item.Slug)
	assert.Equal(t, "All about Go", item.Description)

	_, err = f.svc.Categories.Update(ctx, f.as(f.admin), "golang", &dto.CategoryUpdateRequest{})
	requireKind(t, err, KindNotFound)
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	used := testutil.CreateCategory(t, f.db, "Used")
	unused := testutil.CreateCategory(t, f.db, "Unused")
	testutil.CreateArticle(t, f.db, f.alice.ID, "One", testutil.WithCategories(*used))
	testutil.CreateArticle(t, f.db, f.alice.ID, "Two", testutil.WithCategories(*used))

	err := f.svc.Categories.Delete(ctx, f.as(f.admin), used.Slug)
	requireKind(t, err, KindConflict)
	e, _ := AsError(err)
	assert.Equal(t, int64(2), e.Details["articleCount"])

	var links int64
	require.NoError(t, f.db.Model(&model.ArticleCategory{}).Count(&links).Error)
	assert.Equal(t, int64(2), links)

	require.NoError(t, f.svc.Categories.Delete(ctx, f.as(f.admin), fmt.Sprint(unused.ID)))
	requireKind(t, f.svc.Categories.Delete(ctx, f.as(f.admin), unused.Slug), KindNotFound)
}

func TestCategoryService_GetIncludeArticles(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	category := testutil.CreateCategory(t, f.db, "Mixed")
	testutil.CreateArticle(t, f.db, f.alice.ID, "Out There", testutil.Published, testutil.WithCategories(*category))
	testutil.CreateArticle(t, f.db, f.alice.ID, "Still Drafting", testutil.WithCategories(*category))

	detail, err := f.svc.Categories.Get(ctx, category.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Count.Articles)
	assert.Nil(t, detail.Articles)

	detail, err = f.svc.Categories.Get(ctx, fmt.Sprint(category.ID), true)
	require.NoError(t, err)
	require.Len(t, detail.Articles, 1)
	assert.Equal(t, "Out There", detail.Articles[0].Title)
}

func TestCategoryService_ListCache(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	f := newFixture(t, cache.NewRedisCache(client))
	ctx := context.Background()
	testutil.CreateCategory(t, f.db, "Zeta")
	alpha := testutil.CreateCategory(t, f.db, "Alpha")
	testutil.CreateArticle(t, f.db, f.alice.ID, "Counted", testutil.WithCategories(*alpha))

	items, err := f.svc.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, int64(1), items[0].Count.Articles)
	assert.True(t, mr.Exists(cache.CategoryListKey))

	// 直接写库不会反映到缓存里
	testutil.CreateCategory(t, f.db, "Beta")
	items, err = f.svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = f.svc.Categories.Create(ctx, f.as(f.admin), &dto.CategoryCreateRequest{Name: "Gamma"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.CategoryListKey))

	items, err = f.svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestTagService_Lifecycle(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	f := newFixture(t, cache.NewRedisCache(client))
	ctx := context.Background()

	_, err := f.svc.Tags.Create(ctx, f.as(f.bob), &dto.TagCreateRequest{Name: "Testing"})
	requireKind(t, err, KindForbidden)

	tag, err := f.svc.Tags.Create(ctx, f.as(f.admin), &dto.TagCreateRequest{Name: "Testing"})
	require.NoError(t, err)
	assert.Equal(t, "testing", tag.Slug)

	_, err = f.svc.Tags.Create(ctx, f.as(f.admin), &dto.TagCreateRequest{Name: "testing"})
	requireKind(t, err, KindConflict)

	items, err := f.svc.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, mr.Exists(cache.TagListKey))

	updated, err := f.svc.Tags.Update(ctx, f.as(f.admin), tag.Slug, &dto.TagUpdateRequest{Name: strPtr("Unit Testing")})
	require.NoError(t, err)
	assert.Equal(t, "unit-testing", updated.Slug)
	assert.False(t, mr.Exists(cache.TagListKey))

	var stored model.Tag
	require.NoError(t, f.db.First(&stored, tag.ID).Error)
	testutil.CreateArticle(t, f.db, f.alice.ID, "Tagged", testutil.Published, testutil.WithTags(stored))

	detail, err := f.svc.Tags.Get(ctx, updated.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Count.Articles)
	require.Len(t, detail.Articles, 1)

	requireKind(t, f.svc.Tags.Delete(ctx, f.as(f.admin), updated.Slug), KindConflict)
}
