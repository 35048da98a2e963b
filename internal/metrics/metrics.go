package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal 按方法、路由和状态码统计的请求数
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ViewsRecorded 新记录的唯一浏览数
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_views_recorded_total",
		Help: "Total number of unique article views recorded",
	})

	// LikesCreated 点赞数
	LikesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_likes_created_total",
		Help: "Total number of likes created",
	})

	// ViewsReconciled 浏览量校准任务修正的文章数
	ViewsReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_view_count_reconciled_total",
		Help: "Total number of articles whose view count was corrected",
	})
)
