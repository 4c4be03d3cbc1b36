package repository

import (
	"context"
	"testing"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 单元测试 ====================

func TestLogRouteRepo_ResolveUnset(t *testing.T) {
	repo, err := NewLogRouteRepository(setupRepoStore(t))
	if err != nil {
		t.Fatalf("创建路由仓储失败: %v", err)
	}

	if _, ok := repo.Resolve(context.Background(), "g1", model.LogEventJoin); ok {
		t.Fatal("未配置的路由应返回 absent")
	}
}

func TestLogRouteRepo_ConfigureAndResolve(t *testing.T) {
	repo, err := NewLogRouteRepository(setupRepoStore(t))
	if err != nil {
		t.Fatalf("创建路由仓储失败: %v", err)
	}
	ctx := context.Background()

	if err := repo.Configure(ctx, "g1", model.LogEventJoin, "c1"); err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if err := repo.Configure(ctx, "g1", model.LogEventBan, "c2"); err != nil {
		t.Fatalf("配置失败: %v", err)
	}

	// 覆盖写入，Resolve 返回最后一次配置的频道
	if err := repo.Configure(ctx, "g1", model.LogEventJoin, "c3"); err != nil {
		t.Fatalf("覆盖配置失败: %v", err)
	}

	if ch, ok := repo.Resolve(ctx, "g1", model.LogEventJoin); !ok || ch != "c3" {
		t.Fatalf("join 路由应为最后配置的 c3: %s %v", ch, ok)
	}
	// 其他事件类型不受影响
	if ch, ok := repo.Resolve(ctx, "g1", model.LogEventBan); !ok || ch != "c2" {
		t.Fatalf("ban 路由被串改: %s %v", ch, ok)
	}
	// 其他 guild 不受影响
	if _, ok := repo.Resolve(ctx, "g2", model.LogEventJoin); ok {
		t.Fatal("g2 不应有路由")
	}
}

func TestLogRouteRepo_PersistsAcrossReload(t *testing.T) {
	store := setupRepoStore(t)
	ctx := context.Background()

	repo, err := NewLogRouteRepository(store)
	if err != nil {
		t.Fatalf("创建路由仓储失败: %v", err)
	}
	if err := repo.Configure(ctx, "g1", model.LogEventVoice, "c9"); err != nil {
		t.Fatalf("配置失败: %v", err)
	}

	reloaded, err := NewLogRouteRepository(store)
	if err != nil {
		t.Fatalf("重新加载失败: %v", err)
	}
	if ch, ok := reloaded.Resolve(ctx, "g1", model.LogEventVoice); !ok || ch != "c9" {
		t.Fatalf("重启后路由丢失: %s %v", ch, ok)
	}
}

func TestLogRouteRepo_RoutesSnapshot(t *testing.T) {
	repo, err := NewLogRouteRepository(setupRepoStore(t))
	if err != nil {
		t.Fatalf("创建路由仓储失败: %v", err)
	}
	ctx := context.Background()

	_ = repo.Configure(ctx, "g1", model.LogEventJoin, "c1")
	_ = repo.Configure(ctx, "g1", model.LogEventLeave, "c2")

	routes := repo.Routes(ctx, "g1")
	if len(routes) != 2 {
		t.Fatalf("快照数量不对: %d", len(routes))
	}

	// 快照是副本，改动不影响仓储
	routes[model.LogEventJoin] = "espurio"
	if ch, _ := repo.Resolve(ctx, "g1", model.LogEventJoin); ch != "c1" {
		t.Fatalf("快照不应透传修改: %s", ch)
	}
}
