package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/log"
)

// battleSweeper 由 service.BattleRegistry 实现
type battleSweeper interface {
	StaleBattles(now time.Time) []service.StaleBattle
	EvictBattle(ctx context.Context, battleID, reason string) error
}

// CleanupTask 定时清理超时/过期的战斗
type CleanupTask struct {
	registry battleSweeper
	schedule string
	clock    func() time.Time
	logger   log.Logger
	cron     *cron.Cron
}

// NewCleanupTask 创建定时清理任务实例
func NewCleanupTask(registry battleSweeper, schedule string, logger log.Logger) *CleanupTask {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &CleanupTask{
		registry: registry,
		schedule: schedule,
		clock:    time.Now,
		logger:   logger.With("component", "cleanup_task"),
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() error {
	// 秒 分 时 日 月 周，也支持 @every 30s
	t.cron = cron.New(cron.WithSeconds())

	_, err := t.cron.AddFunc(t.schedule, func() {
		t.Sweep(context.Background())
	})
	if err != nil {
		t.logger.Error("【定时任务】添加战斗清理任务失败", err, "schedule", t.schedule)
		return err
	}

	t.cron.Start()
	t.logger.Info("【定时任务】已启动 - 战斗清理", "schedule", t.schedule)
	return nil
}

// Sweep 执行一次清理，单场失败不影响其余战斗，返回成功移除的数量
func (t *CleanupTask) Sweep(ctx context.Context) int {
	stale := t.registry.StaleBattles(t.clock())
	if len(stale) == 0 {
		return 0
	}

	removed := 0
	for _, b := range stale {
		if err := t.registry.EvictBattle(ctx, b.ID, b.Reason); err != nil {
			t.logger.WarnContext(ctx, "【定时任务】移除战斗失败",
				log.String("battle_id", b.ID),
				log.String("reason", b.Reason),
				log.Any("error", err),
			)
			continue
		}
		removed++
	}

	t.logger.InfoContext(ctx, "【定时任务】战斗清理完成",
		log.Int("candidates", len(stale)),
		log.Int("removed", removed),
	)
	return removed
}

// Stop 停止定时任务（优雅关闭），等待正在执行的清理结束
func (t *CleanupTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【定时任务】正在停止战斗清理任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【定时任务】战斗清理任务已停止")
	}
}
