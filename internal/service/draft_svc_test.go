package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 测试辅助 ====================

func setupDraft(t *testing.T, ttl time.Duration) *DraftService {
	t.Helper()
	return NewDraftService(setupCatalog(t), ttl, zerolog.Nop())
}

// ==================== 单元测试 ====================

func TestDraft_OpenAddCommit(t *testing.T) {
	svc := setupDraft(t, 0)
	ctx := context.Background()

	sessionID, err := svc.Open("staff1", PanelMeta{Titulo: "Pacotes", Descricao: "Escolha"})
	if err != nil {
		t.Fatalf("开草稿失败: %v", err)
	}

	if err := svc.AddOption(sessionID, OptionMeta{Nome: "10 ROOMS", Preco: "2.90"}); err != nil {
		t.Fatalf("加选项失败: %v", err)
	}

	bundleID, err := svc.Commit(ctx, sessionID)
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	if bundleID != "drop_1" {
		t.Fatalf("面板 ID 错误: %s", bundleID)
	}

	// 成品恰好一个选项，描述/emoji 落了默认值
	bundle, err := svc.catalog.GetBundle(ctx, bundleID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(bundle.Opcoes) != 1 {
		t.Fatalf("选项数量错误: %d", len(bundle.Opcoes))
	}
	opt := bundle.Opcoes[0]
	if opt.Preco != "2.90" {
		t.Fatalf("价格不一致: %q", opt.Preco)
	}
	if opt.Descricao != "Valor: 2.90" {
		t.Fatalf("描述默认值错误: %q", opt.Descricao)
	}
	if opt.Emoji != model.DefaultOptionEmoji {
		t.Fatalf("emoji 默认值错误: %q", opt.Emoji)
	}

	// 提交后会话销毁
	if _, err := svc.Get(sessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("提交后会话应销毁: %v", err)
	}
}

func TestDraft_OneActivePerStaff(t *testing.T) {
	svc := setupDraft(t, 0)

	first, err := svc.Open("staff1", PanelMeta{Titulo: "A"})
	if err != nil {
		t.Fatalf("开草稿失败: %v", err)
	}

	// 同一操作者第二次开草稿报冲突，旧草稿原封不动
	if _, err := svc.Open("staff1", PanelMeta{Titulo: "B"}); !errors.Is(err, ErrDraftConflict) {
		t.Fatalf("应报 ErrDraftConflict: %v", err)
	}
	session, err := svc.Get(first)
	if err != nil {
		t.Fatalf("旧草稿不应受影响: %v", err)
	}
	if session.Bundle.TituloPainel != "A" {
		t.Fatalf("旧草稿被覆盖: %q", session.Bundle.TituloPainel)
	}

	// 其他操作者不受影响
	if _, err := svc.Open("staff2", PanelMeta{Titulo: "C"}); err != nil {
		t.Fatalf("其他操作者应能开草稿: %v", err)
	}

	// 放弃后可以重新开
	svc.Discard(first)
	if _, err := svc.Open("staff1", PanelMeta{Titulo: "D"}); err != nil {
		t.Fatalf("放弃后应能重开: %v", err)
	}
}

func TestDraft_AddOptionUnknownSession(t *testing.T) {
	svc := setupDraft(t, 0)

	// 模拟进程重启后残留的会话 ID
	if err := svc.AddOption("inexistente", OptionMeta{Nome: "x", Preco: "1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("未知会话应报 ErrNotFound: %v", err)
	}
}

func TestDraft_CommitEmptyKeepsSession(t *testing.T) {
	svc := setupDraft(t, 0)
	ctx := context.Background()

	sessionID, _ := svc.Open("staff1", PanelMeta{Titulo: "Pacotes"})

	if _, err := svc.Commit(ctx, sessionID); !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("零选项提交应报 ErrEmptyCollection: %v", err)
	}

	// 草稿保留，补一个选项后提交成功
	if _, err := svc.Get(sessionID); err != nil {
		t.Fatalf("失败提交应保留草稿: %v", err)
	}
	_ = svc.AddOption(sessionID, OptionMeta{Nome: "x", Preco: "1.00"})
	if _, err := svc.Commit(ctx, sessionID); err != nil {
		t.Fatalf("补选项后应提交成功: %v", err)
	}
}

func TestDraft_SweepExpired(t *testing.T) {
	svc := setupDraft(t, 30*time.Minute)

	base := time.Now()
	svc.now = func() time.Time { return base }

	stale, _ := svc.Open("staff1", PanelMeta{Titulo: "velho"})
	_, _ = svc.Open("staff2", PanelMeta{Titulo: "novo"})

	// staff2 的草稿刚被碰过
	svc.now = func() time.Time { return base.Add(29 * time.Minute) }
	if err := svc.AddOption(mustSessionOf(t, svc, "staff2"), OptionMeta{Nome: "x", Preco: "1"}); err != nil {
		t.Fatalf("加选项失败: %v", err)
	}

	svc.now = func() time.Time { return base.Add(31 * time.Minute) }
	if removed := svc.SweepExpired(); removed != 1 {
		t.Fatalf("应回收 1 份草稿: %d", removed)
	}

	if _, err := svc.Get(stale); !errors.Is(err, ErrNotFound) {
		t.Fatalf("过期草稿应被回收: %v", err)
	}
	// 回收后同一操作者可以重开
	if _, err := svc.Open("staff1", PanelMeta{Titulo: "renovado"}); err != nil {
		t.Fatalf("回收后应能重开: %v", err)
	}
}

func mustSessionOf(t *testing.T, svc *DraftService, staffID string) string {
	t.Helper()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	id, ok := svc.byStaff[staffID]
	if !ok {
		t.Fatalf("%s 没有进行中的草稿", staffID)
	}
	return id
}
