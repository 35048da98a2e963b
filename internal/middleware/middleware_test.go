package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/internal/metrics"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(buffer int) *auth.Manager {
	return auth.NewManager(config.JWTConfig{
		SecretKey:            "middleware-test",
		AccessExpireSeconds:  600,
		RefreshExpireSeconds: 3600,
		BufferSeconds:        buffer,
		Issuer:               "test",
	}, nil)
}

// echo 返回上下文中的用户信息
func echo(c *gin.Context) {
	id, _ := GetUserID(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "role": role, "token": GetToken(c) != ""})
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	tokens := newTokens(0)
	pair, err := tokens.GenerateTokenPair(7, model.RoleUser)
	require.NoError(t, err)
	revoked, err := tokens.GenerateTokenPair(8, model.RoleUser)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(context.Background(), revoked.AccessToken))

	r := gin.New()
	r.GET("/", JWTAuth(tokens), echo)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "请先登录"},
		{"wrong scheme", "Token " + pair.AccessToken, http.StatusUnauthorized, "Authorization格式错误"},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "无效的令牌"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "无效的令牌"},
		{"revoked", "Bearer " + revoked.AccessToken, http.StatusUnauthorized, "令牌已失效"},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, `"id":7`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestJWTAuth_ExpireSoonHeader(t *testing.T) {
	tokens := newTokens(3600)
	pair, err := tokens.GenerateTokenPair(1, model.RoleUser)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", JWTAuth(tokens), echo)

	w := do(r, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Token-Expire-Soon"))
}

// fakeAccounts 账号当前角色
type fakeAccounts map[uint]string

func (f fakeAccounts) CurrentRole(_ context.Context, id uint) (string, bool, error) {
	role, ok := f[id]
	return role, ok, nil
}

func TestAdminAuth(t *testing.T) {
	tokens := newTokens(0)
	user, err := tokens.GenerateTokenPair(1, model.RoleUser)
	require.NoError(t, err)
	admin, err := tokens.GenerateTokenPair(2, model.RoleAdmin)
	require.NoError(t, err)
	demoted, err := tokens.GenerateTokenPair(3, model.RoleAdmin)
	require.NoError(t, err)
	removed, err := tokens.GenerateTokenPair(4, model.RoleAdmin)
	require.NoError(t, err)

	accounts := fakeAccounts{1: model.RoleUser, 2: model.RoleAdmin, 3: model.RoleUser}

	var reached int
	r := gin.New()
	r.GET("/", AdminAuth(tokens, accounts), func(c *gin.Context) {
		reached++
		echo(c)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"user token", "Bearer " + user.AccessToken, http.StatusForbidden},
		{"demoted admin", "Bearer " + demoted.AccessToken, http.StatusForbidden},
		{"deleted admin", "Bearer " + removed.AccessToken, http.StatusForbidden},
		{"admin", "Bearer " + admin.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, tt.header).Code)
		})
	}
	// 只有管理员请求到达处理函数，且只执行一次
	assert.Equal(t, 1, reached)
}

func TestJWTAuth_HandlerRunsOnce(t *testing.T) {
	tokens := newTokens(0)
	pair, err := tokens.GenerateTokenPair(5, model.RoleUser)
	require.NoError(t, err)

	var reached int
	r := gin.New()
	r.GET("/", JWTAuth(tokens), func(c *gin.Context) {
		reached++
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, do(r, "Bearer "+pair.AccessToken).Code)
	assert.Equal(t, 1, reached)
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTokens(0)
	pair, err := tokens.GenerateTokenPair(3, model.RoleAdmin)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", OptionalAuth(tokens), echo)

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":"","token":false}`, w.Body.String())

	w = do(r, "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":"","token":false}`, w.Body.String())

	w = do(r, "Bearer "+pair.AccessToken)
	assert.JSONEq(t, `{"id":3,"role":"ADMIN","token":true}`, w.Body.String())
}

func TestSession(t *testing.T) {
	r := gin.New()
	r.GET("/", Session(config.SessionConfig{CookieName: "sid", MaxAge: 60}), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, w.Body.String())
	assert.Len(t, cookies[0].Value, 36)

	// 已有cookie时沿用且不再下发
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "existing"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "existing", w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodGet, "/items/43", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}
