package service

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 服务依赖
type Options struct {
	DB         *gorm.DB
	Cache      cache.Cache           // 为nil时不使用缓存
	ES         *elasticsearch.Client // 为nil时搜索走数据库
	ESIndex    string
	Tokens     *auth.Manager
	Moderation config.ModerationConfig
	Logger     *zap.SugaredLogger
}

// Services 全部业务服务
type Services struct {
	Articles   *ArticleService
	Views      *ViewService
	Likes      *LikeService
	Comments   *CommentService
	Categories *CategoryService
	Tags       *TagService
	Users      *UserService
	Auth       *AuthService
	Search     *SearchService
}

// New 按依赖创建全部服务
func New(opts Options) (*Services, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	moderator, err := NewModerator(opts.Moderation.Words, opts.Moderation.WordsFile)
	if err != nil {
		return nil, err
	}

	search := NewSearchService(opts.DB, opts.ES, opts.ESIndex, log.Named("search"))
	views := NewViewService(opts.DB, log.Named("view"))
	articles := NewArticleService(opts.DB, opts.Cache, views, search, log.Named("article"))

	return &Services{
		Articles:   articles,
		Views:      views,
		Likes:      NewLikeService(opts.DB, log.Named("like")),
		Comments:   NewCommentService(opts.DB, moderator, log.Named("comment")),
		Categories: NewCategoryService(opts.DB, opts.Cache, articles, log.Named("category")),
		Tags:       NewTagService(opts.DB, opts.Cache, articles, log.Named("tag")),
		Users:      NewUserService(opts.DB, articles, search, log.Named("user")),
		Auth:       NewAuthService(opts.DB, opts.Tokens, log.Named("auth")),
		Search:     search,
	}, nil
}
