package task

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// DraftCleanupTask 定期回收闲置草稿会话
type DraftCleanupTask struct {
	Drafts *service.DraftService
	Cron   *cron.Cron

	log zerolog.Logger
}

func NewDraftCleanupTask(drafts *service.DraftService, log zerolog.Logger) *DraftCleanupTask {
	return &DraftCleanupTask{
		Drafts: drafts,
		Cron:   cron.New(cron.WithSeconds()), // 支持秒级控制
		log:    log.With().Str("task", "draft_cleanup").Logger(),
	}
}

// Start 启动定时任务（每 5 分钟扫一次）
func (t *DraftCleanupTask) Start() error {
	_, err := t.Cron.AddFunc("0 0/5 * * * *", func() {
		if removed := t.Drafts.SweepExpired(); removed > 0 {
			t.log.Info().Int("removed", removed).Msg("闲置草稿已回收")
		}
	})
	if err != nil {
		return err
	}

	t.Cron.Start()
	t.log.Info().Msg("草稿清理任务已启动 (每5分钟检查一次)")
	return nil
}

// Stop 停止定时任务，等待在途执行完成
func (t *DraftCleanupTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
}
