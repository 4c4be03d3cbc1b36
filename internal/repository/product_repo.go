package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 仓储接口 ====================

// ProductEntry 带 ID 的商品快照，列表展示用
type ProductEntry struct {
	ID      string         `json:"id"`
	Product *model.Product `json:"product"`
}

// ProductRepository 商品目录仓储
// 写穿透：每次 Create 先更新内存映射再整文档落盘，落盘失败回滚内存。
type ProductRepository interface {
	// Create 分配下一个顺序 ID（prod_<count+1>）并持久化，返回分配的 ID
	Create(ctx context.Context, product *model.Product) (string, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	// List 按 ID 编号升序返回快照（底层是 map，编号序即插入序）
	List(ctx context.Context) ([]ProductEntry, error)
	Count(ctx context.Context) int
}

// ==================== 实现 ====================

type productRepo struct {
	store storage.Store

	mu    sync.RWMutex
	cache map[string]*model.Product // 启动时整文档加载，写时同步刷新
}

// NewProductRepository 创建商品仓储，启动时加载 produtos 域
// 文档损坏返回错误，调用方按致命处理。
func NewProductRepository(store storage.Store) (ProductRepository, error) {
	r := &productRepo{
		store: store,
		cache: make(map[string]*model.Product),
	}
	if err := store.Load(storage.DomainProducts, &r.cache); err != nil {
		return nil, err
	}
	if r.cache == nil {
		r.cache = make(map[string]*model.Product)
	}
	return r, nil
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("%s%d", model.ProductIDPrefix, len(r.cache)+1)
	r.cache[id] = product

	if err := r.store.Save(storage.DomainProducts, r.cache); err != nil {
		delete(r.cache, id)
		return "", fmt.Errorf("persist product %s: %w", id, err)
	}
	return id, nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.cache[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrRecordNotFound)
	}
	return product, nil
}

func (r *productRepo) List(ctx context.Context) ([]ProductEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]ProductEntry, 0, len(r.cache))
	for id, product := range r.cache {
		entries = append(entries, ProductEntry{ID: id, Product: product})
	}
	sortByIDNumber(entries, model.ProductIDPrefix)
	return entries, nil
}

func (r *productRepo) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// sortByIDNumber 按 "<prefix><n>" 的数字部分升序
func sortByIDNumber(entries []ProductEntry, prefix string) {
	sort.Slice(entries, func(i, j int) bool {
		return idNumber(entries[i].ID, prefix) < idNumber(entries[j].ID, prefix)
	})
}

func idNumber(id, prefix string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, prefix))
	return n
}
