package task

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// ==================== 草稿清理任务 ====================

func setupDraftService(t *testing.T, ttl time.Duration) *service.DraftService {
	t.Helper()
	log := zerolog.Nop()
	catalog := service.NewCatalogService(nil, nil, nil, time.UTC, log)
	return service.NewDraftService(catalog, ttl, log)
}

func TestDraftCleanupTaskStartStop(t *testing.T) {
	drafts := setupDraftService(t, 30*time.Minute)
	cleanup := NewDraftCleanupTask(drafts, zerolog.Nop())

	if err := cleanup.Start(); err != nil {
		t.Fatalf("启动清理任务失败: %v", err)
	}
	if entries := cleanup.Cron.Entries(); len(entries) != 1 {
		t.Fatalf("期望注册 1 个定时条目，实际 %d", len(entries))
	}

	// Stop 应等待在途任务并正常返回
	done := make(chan struct{})
	go func() {
		cleanup.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop 超时未返回")
	}
}

func TestDraftCleanupSweeps(t *testing.T) {
	drafts := setupDraftService(t, time.Nanosecond)

	if _, err := drafts.Open("staff-1", service.PanelMeta{Titulo: "Drop", Descricao: "desc"}); err != nil {
		t.Fatalf("打开草稿失败: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	// 任务体只是包装 SweepExpired，闲置超过 TTL 的草稿应被回收
	if removed := drafts.SweepExpired(); removed != 1 {
		t.Fatalf("期望回收 1 份草稿，实际 %d", removed)
	}
	if drafts.ActiveSessions() != 0 {
		t.Fatalf("回收后应无在途草稿，实际 %d", drafts.ActiveSessions())
	}
}
