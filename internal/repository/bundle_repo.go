package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 仓储接口 ====================

// BundleEntry 带 ID 的面板快照
type BundleEntry struct {
	ID     string        `json:"id"`
	Bundle *model.Bundle `json:"bundle"`
}

// BundleRepository 下拉面板仓储，结构同 ProductRepository
// 选项非空校验在 service 层（目录层只负责编号与持久化）。
type BundleRepository interface {
	Create(ctx context.Context, bundle *model.Bundle) (string, error)
	GetByID(ctx context.Context, id string) (*model.Bundle, error)
	List(ctx context.Context) ([]BundleEntry, error)
	Count(ctx context.Context) int
}

// ==================== 实现 ====================

type bundleRepo struct {
	store storage.Store

	mu    sync.RWMutex
	cache map[string]*model.Bundle
}

// NewBundleRepository 创建面板仓储，启动时加载 produtos_drop 域
func NewBundleRepository(store storage.Store) (BundleRepository, error) {
	r := &bundleRepo{
		store: store,
		cache: make(map[string]*model.Bundle),
	}
	if err := store.Load(storage.DomainBundles, &r.cache); err != nil {
		return nil, err
	}
	if r.cache == nil {
		r.cache = make(map[string]*model.Bundle)
	}
	return r, nil
}

func (r *bundleRepo) Create(ctx context.Context, bundle *model.Bundle) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("%s%d", model.BundleIDPrefix, len(r.cache)+1)
	r.cache[id] = bundle

	if err := r.store.Save(storage.DomainBundles, r.cache); err != nil {
		delete(r.cache, id)
		return "", fmt.Errorf("persist bundle %s: %w", id, err)
	}
	return id, nil
}

func (r *bundleRepo) GetByID(ctx context.Context, id string) (*model.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundle, ok := r.cache[id]
	if !ok {
		return nil, fmt.Errorf("bundle %s: %w", id, ErrRecordNotFound)
	}
	return bundle, nil
}

func (r *bundleRepo) List(ctx context.Context) ([]BundleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]BundleEntry, 0, len(r.cache))
	for id, bundle := range r.cache {
		entries = append(entries, BundleEntry{ID: id, Bundle: bundle})
	}
	sort.Slice(entries, func(i, j int) bool {
		return idNumber(entries[i].ID, model.BundleIDPrefix) < idNumber(entries[j].ID, model.BundleIDPrefix)
	})
	return entries, nil
}

func (r *bundleRepo) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
