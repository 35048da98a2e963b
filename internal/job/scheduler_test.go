package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReconciler struct {
	calls atomic.Int32
	err   error
}

func (f *fakeReconciler) ReconcileCounts(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, f.err
}

func TestScheduler_RunsReconcile(t *testing.T) {
	views := &fakeReconciler{}
	s, err := NewScheduler(config.CronConfig{
		Timezone:      "Asia/Shanghai",
		ViewReconcile: "@every 1s",
	}, views, zap.NewNop().Sugar())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return views.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_FailureDoesNotPanic(t *testing.T) {
	views := &fakeReconciler{err: errors.New("db down")}
	s, err := NewScheduler(config.CronConfig{ViewReconcile: "0 */10 * * * *"}, views, zap.NewNop().Sugar())
	require.NoError(t, err)

	s.reconcileViews()
	assert.Equal(t, int32(1), views.calls.Load())
}

func TestNewScheduler_Errors(t *testing.T) {
	_, err := NewScheduler(config.CronConfig{Timezone: "Mars/Olympus"}, &fakeReconciler{}, zap.NewNop().Sugar())
	assert.Error(t, err)

	// 缺少秒字段
	_, err = NewScheduler(config.CronConfig{ViewReconcile: "*/10 * * * *"}, &fakeReconciler{}, zap.NewNop().Sugar())
	assert.Error(t, err)

	s, err := NewScheduler(config.CronConfig{}, &fakeReconciler{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Empty(t, s.cron.Entries())
}
