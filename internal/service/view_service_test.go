package service

import (
	"context"
	"testing"

	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewCount(t *testing.T, f *fixture, articleID uint) int64 {
	t.Helper()
	var a model.Article
	require.NoError(t, f.db.Select("view_count").First(&a, articleID).Error)
	return a.ViewCount
}

func TestViewService_RecordCountsOncePerSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Counting Views", testutil.Published)

	first, created, err := f.svc.Views.Record(ctx, article.ID, "session-1")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.Views.Record(ctx, article.ID, "session-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(1), viewCount(t, f, article.ID))

	_, created, err = f.svc.Views.Record(ctx, article.ID, "session-2")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), viewCount(t, f, article.ID))
}

func TestViewService_RecordUnknownArticle(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.svc.Views.Record(context.Background(), 999, "session-1")
	requireKind(t, err, KindNotFound)

	var n int64
	require.NoError(t, f.db.Model(&model.View{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestViewService_RecordRequiresSession(t *testing.T) {
	f := newFixture(t, nil)
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Needs Session", testutil.Published)

	_, _, err := f.svc.Views.Record(context.Background(), article.ID, "")
	requireKind(t, err, KindValidation)
}

// 两个请求都通过了“是否已浏览”的检查后，后写入者被唯一索引拦下且计数不变
func TestViewService_ConcurrentInsertLoses(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Racing Views", testutil.Published)

	_, err := f.svc.Views.insertView(ctx, article.ID, "session-1")
	require.NoError(t, err)

	_, err = f.svc.Views.insertView(ctx, article.ID, "session-1")
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
	assert.Equal(t, int64(1), viewCount(t, f, article.ID))
}

func TestViewService_Stats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Stats Article", testutil.Published)

	for _, s := range []string{"a", "b", "a"} {
		_, _, err := f.svc.Views.Record(ctx, article.ID, s)
		require.NoError(t, err)
	}

	stats, err := f.svc.Views.Stats(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stats Article", stats.Article.Title)
	assert.Equal(t, int64(2), stats.Article.ViewCount)
	assert.Equal(t, int64(2), stats.ViewCount)

	_, err = f.svc.Views.Stats(ctx, 12345)
	requireKind(t, err, KindNotFound)
}

func TestViewService_ReconcileCounts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	drifted := testutil.CreateArticle(t, f.db, f.alice.ID, "Drifted", testutil.Published)
	accurate := testutil.CreateArticle(t, f.db, f.alice.ID, "Accurate", testutil.Published)

	_, _, err := f.svc.Views.Record(ctx, drifted.ID, "s1")
	require.NoError(t, err)
	_, _, err = f.svc.Views.Record(ctx, accurate.ID, "s1")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Article{}).Where("id = ?", drifted.ID).
		UpdateColumn("view_count", 42).Error)

	n, err := f.svc.Views.ReconcileCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), viewCount(t, f, drifted.ID))
	assert.Equal(t, int64(1), viewCount(t, f, accurate.ID))

	n, err = f.svc.Views.ReconcileCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
