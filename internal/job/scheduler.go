package job

import (
	"context"
	"fmt"
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 单次任务的最长执行时间
const jobTimeout = 5 * time.Minute

// ViewReconciler 浏览量校准
type ViewReconciler interface {
	ReconcileCounts(ctx context.Context) (int64, error)
}

// Scheduler 定时任务调度器
//
// 表达式带秒字段，例如 "0 */10 * * * *" 表示每10分钟执行一次
type Scheduler struct {
	cron   *cron.Cron
	views  ViewReconciler
	logger *zap.SugaredLogger
}

// NewScheduler 创建调度器并注册任务，表达式为空时不注册对应任务
func NewScheduler(cfg config.CronConfig, views ViewReconciler, logger *zap.SugaredLogger) (*Scheduler, error) {
	location := time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("无效的时区 %q: %w", cfg.Timezone, err)
		}
		location = loc
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(location)),
		views:  views,
		logger: logger,
	}

	if cfg.ViewReconcile != "" {
		if _, err := s.cron.AddFunc(cfg.ViewReconcile, s.reconcileViews); err != nil {
			return nil, fmt.Errorf("注册浏览量校准任务失败: %w", err)
		}
	}
	return s, nil
}

// Start 启动调度器，不阻塞
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infof("定时任务已启动，共 %d 个任务", len(s.cron.Entries()))
}

// Stop 停止调度器并等待运行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) reconcileViews() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.views.ReconcileCounts(ctx)
	if err != nil {
		s.logger.Errorw("浏览量校准失败", "error", err)
		return
	}
	s.logger.Infow("浏览量校准完成", "corrected", n)
}
