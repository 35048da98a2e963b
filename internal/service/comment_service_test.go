package service

import (
	"context"
	"strings"
	"testing"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateModerates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Commented", testutil.Published)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "Nice post!", "Nice post!"},
		{"sensitive word masked", "what a badword here", "what a ******* here"},
		{"script stripped", `<script>alert("x")</script>hello <b>there</b>`, "hello <b>there</b>"},
		{"surrounding space trimmed", "   padded   ", "padded"},
		{"special characters kept", `I'm sure 1 < 2 & "ok"`, `I'm sure 1 < 2 & "ok"`},
		{"quotes within limit", strings.Repeat("'", 300), strings.Repeat("'", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := f.svc.Comments.Create(ctx, f.as(f.bob), &dto.CommentCreateRequest{
				ArticleID: article.ID,
				Content:   tt.content,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Content)
			assert.Equal(t, "Bob", item.Author.Name)

			var stored model.Comment
			require.NoError(t, f.db.First(&stored, item.ID).Error)
			assert.Equal(t, tt.want, stored.Content)
		})
	}
}

func TestCommentService_CreateErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	published := testutil.CreateArticle(t, f.db, f.alice.ID, "Open", testutil.Published)
	draft := testutil.CreateArticle(t, f.db, f.alice.ID, "Closed")

	tests := []struct {
		name   string
		caller Caller
		req    dto.CommentCreateRequest
		kind   ErrorKind
	}{
		{"anonymous", Caller{}, dto.CommentCreateRequest{ArticleID: published.ID, Content: "hi"}, KindUnauthenticated},
		{"empty after cleaning", f.as(f.bob), dto.CommentCreateRequest{ArticleID: published.ID, Content: "<script>x</script>"}, KindValidation},
		{"too long", f.as(f.bob), dto.CommentCreateRequest{ArticleID: published.ID, Content: strings.Repeat("a", maxCommentLength+1)}, KindValidation},
		{"unknown article", f.as(f.bob), dto.CommentCreateRequest{ArticleID: 999, Content: "hi"}, KindNotFound},
		{"draft of someone else", f.as(f.bob), dto.CommentCreateRequest{ArticleID: draft.ID, Content: "hi"}, KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Comments.Create(ctx, tt.caller, &tt.req)
			requireKind(t, err, tt.kind)
		})
	}

	// 作者可以评论自己的草稿
	_, err := f.svc.Comments.Create(ctx, f.as(f.alice), &dto.CommentCreateRequest{ArticleID: draft.ID, Content: "note to self"})
	require.NoError(t, err)
}

func TestCommentService_UpdateDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	article := testutil.CreateArticle(t, f.db, f.alice.ID, "Thread", testutil.Published)
	comment := testutil.CreateComment(t, f.db, article.ID, f.bob.ID, "original")

	_, err := f.svc.Comments.Update(ctx, f.as(f.alice), comment.ID, &dto.CommentUpdateRequest{Content: "hijack"})
	requireKind(t, err, KindForbidden)

	item, err := f.svc.Comments.Update(ctx, f.as(f.bob), comment.ID, &dto.CommentUpdateRequest{Content: "edited badword"})
	require.NoError(t, err)
	assert.Equal(t, "edited *******", item.Content)

	item, err = f.svc.Comments.Update(ctx, f.as(f.admin), comment.ID, &dto.CommentUpdateRequest{Content: "moderated"})
	require.NoError(t, err)
	assert.Equal(t, "moderated", item.Content)

	_, err = f.svc.Comments.Update(ctx, f.as(f.bob), 999, &dto.CommentUpdateRequest{Content: "x"})
	requireKind(t, err, KindNotFound)

	requireKind(t, f.svc.Comments.Delete(ctx, Caller{}, comment.ID), KindUnauthenticated)
	requireKind(t, f.svc.Comments.Delete(ctx, f.as(f.alice), comment.ID), KindForbidden)
	require.NoError(t, f.svc.Comments.Delete(ctx, f.as(f.bob), comment.ID))
	requireKind(t, f.svc.Comments.Delete(ctx, f.as(f.bob), comment.ID), KindNotFound)
}

func TestCommentService_ListVisibility(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	published := testutil.CreateArticle(t, f.db, f.alice.ID, "Visible", testutil.Published)
	draft := testutil.CreateArticle(t, f.db, f.alice.ID, "Invisible")
	testutil.CreateComment(t, f.db, published.ID, f.bob.ID, "public one")
	testutil.CreateComment(t, f.db, published.ID, f.bob.ID, "public two")
	hidden := testutil.CreateComment(t, f.db, draft.ID, f.alice.ID, "hidden")

	res, err := f.svc.Comments.List(ctx, Caller{}, dto.CommentQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)
	require.Len(t, res.Comments, 2)
	assert.Equal(t, "public two", res.Comments[0].Content)

	res, err = f.svc.Comments.List(ctx, f.as(f.admin), dto.CommentQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Pagination.Total)

	_, err = f.svc.Comments.List(ctx, f.as(f.bob), dto.CommentQuery{ArticleID: draft.ID})
	requireKind(t, err, KindForbidden)

	res, err = f.svc.Comments.List(ctx, f.as(f.alice), dto.CommentQuery{ArticleID: draft.ID})
	require.NoError(t, err)
	assert.Len(t, res.Comments, 1)

	_, err = f.svc.Comments.Get(ctx, Caller{}, hidden.ID)
	requireKind(t, err, KindForbidden)
}
