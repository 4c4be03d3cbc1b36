package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 测试辅助 ====================

func setupRepoStore(t *testing.T) *storage.FileStore {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	return store
}

func mustProductRepo(t *testing.T, store storage.Store) ProductRepository {
	repo, err := NewProductRepository(store)
	if err != nil {
		t.Fatalf("创建商品仓储失败: %v", err)
	}
	return repo
}

// ==================== 单元测试 ====================

func TestProductRepo_SequentialIDs(t *testing.T) {
	repo := mustProductRepo(t, setupRepoStore(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id, err := repo.Create(ctx, &model.Product{Titulo: fmt.Sprintf("P%d", i), Preco: "1.00"})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		want := fmt.Sprintf("prod_%d", i)
		if id != want {
			t.Fatalf("ID 应严格递增: got %s want %s", id, want)
		}
	}
}

func TestProductRepo_IDsIndependentOfBundles(t *testing.T) {
	store := setupRepoStore(t)
	products := mustProductRepo(t, store)
	bundles, err := NewBundleRepository(store)
	if err != nil {
		t.Fatalf("创建面板仓储失败: %v", err)
	}
	ctx := context.Background()

	// 交错创建，两个序列互不影响
	id1, _ := products.Create(ctx, &model.Product{Titulo: "A", Preco: "1.00"})
	did1, _ := bundles.Create(ctx, &model.Bundle{TituloPainel: "B", Opcoes: []model.BundleOption{{Nome: "x", Preco: "1"}}})
	id2, _ := products.Create(ctx, &model.Product{Titulo: "C", Preco: "2.00"})

	if id1 != "prod_1" || id2 != "prod_2" {
		t.Fatalf("商品序列被面板影响: %s, %s", id1, id2)
	}
	if did1 != "drop_1" {
		t.Fatalf("面板序列异常: %s", did1)
	}
}

func TestProductRepo_PersistsAcrossReload(t *testing.T) {
	store := setupRepoStore(t)
	ctx := context.Background()

	repo := mustProductRepo(t, store)
	if _, err := repo.Create(ctx, &model.Product{Titulo: "VIP", Descricao: "desc", Preco: "29.90"}); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 重新加载（模拟重启）
	reloaded := mustProductRepo(t, store)
	got, err := reloaded.GetByID(ctx, "prod_1")
	if err != nil {
		t.Fatalf("重启后记录丢失: %v", err)
	}
	if got.Titulo != "VIP" || got.Preco != "29.90" {
		t.Fatalf("字段丢失: %+v", got)
	}

	// 编号衔接旧目录
	id, err := reloaded.Create(ctx, &model.Product{Titulo: "VIP2", Preco: "59.90"})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if id != "prod_2" {
		t.Fatalf("重启后编号应继续递增: %s", id)
	}
}

func TestProductRepo_GetByIDNotFound(t *testing.T) {
	repo := mustProductRepo(t, setupRepoStore(t))

	if _, err := repo.GetByID(context.Background(), "prod_99"); err == nil {
		t.Fatal("不存在的商品应报错")
	}
}

func TestProductRepo_ListOrdered(t *testing.T) {
	repo := mustProductRepo(t, setupRepoStore(t))
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		if _, err := repo.Create(ctx, &model.Product{Titulo: fmt.Sprintf("P%d", i), Preco: "1.00"}); err != nil {
			t.Fatalf("创建失败: %v", err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("数量不对: %d", len(entries))
	}
	// prod_10 按数字序排在 prod_9 之后
	for i, entry := range entries {
		want := fmt.Sprintf("prod_%d", i+1)
		if entry.ID != want {
			t.Fatalf("顺序错误: pos %d got %s", i, entry.ID)
		}
	}
}
