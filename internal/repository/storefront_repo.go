package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 仓储接口 ====================

// StorefrontRepository 店铺配置（单例文档）仓储
//
// NextCartNumber 是全系统唯一一处需要显式互斥的计数更新：
// 读取当前值作为本次编号，+1 后先落盘再返回，保证并发开车不重号、
// 进程半路挂掉也不会复用编号。
type StorefrontRepository interface {
	// Get 返回配置快照（副本，调用方不可借其修改内部状态）
	Get(ctx context.Context) (model.StorefrontConfig, error)
	SetCategory(ctx context.Context, categoryID string) error
	SetPixInfo(ctx context.Context, pixInfo string) error
	SetVoiceChannel(ctx context.Context, channelID string) error
	// NextCartNumber 取号并递增 guild 的购物车计数器，持久化后才返回
	NextCartNumber(ctx context.Context, guildID string) (int, error)
}

// ==================== 实现 ====================

type storefrontRepo struct {
	store storage.Store

	mu  sync.Mutex
	cfg *model.StorefrontConfig
}

// NewStorefrontRepository 创建配置仓储，启动时加载 config 域，缺省播种
func NewStorefrontRepository(store storage.Store) (StorefrontRepository, error) {
	cfg := model.NewStorefrontConfig()
	if err := store.Load(storage.DomainStorefront, cfg); err != nil {
		return nil, err
	}
	if cfg.PixInfo == "" {
		cfg.PixInfo = model.DefaultPixInfo
	}
	if cfg.CartCounters == nil {
		cfg.CartCounters = make(map[string]int)
	}
	return &storefrontRepo{store: store, cfg: cfg}, nil
}

func (r *storefrontRepo) Get(ctx context.Context) (model.StorefrontConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := *r.cfg
	snapshot.CartCounters = make(map[string]int, len(r.cfg.CartCounters))
	for guild, n := range r.cfg.CartCounters {
		snapshot.CartCounters[guild] = n
	}
	return snapshot, nil
}

func (r *storefrontRepo) SetCategory(ctx context.Context, categoryID string) error {
	return r.update(func(cfg *model.StorefrontConfig) {
		cfg.CategoryID = categoryID
	})
}

func (r *storefrontRepo) SetPixInfo(ctx context.Context, pixInfo string) error {
	return r.update(func(cfg *model.StorefrontConfig) {
		cfg.PixInfo = pixInfo
	})
}

func (r *storefrontRepo) SetVoiceChannel(ctx context.Context, channelID string) error {
	return r.update(func(cfg *model.StorefrontConfig) {
		cfg.VoiceChannelID = channelID
	})
}

func (r *storefrontRepo) NextCartNumber(ctx context.Context, guildID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	number := r.cfg.CartCounters[guildID]
	r.cfg.CartCounters[guildID] = number + 1

	if err := r.store.Save(storage.DomainStorefront, r.cfg); err != nil {
		// 落盘失败回滚，编号未被消费
		r.cfg.CartCounters[guildID] = number
		return 0, fmt.Errorf("persist cart counter for guild %s: %w", guildID, err)
	}
	return number, nil
}

// update 统一的改-存路径，失败时不保留半截修改由调用方自理
// （单例文档字段互不依赖，覆盖写即可）
func (r *storefrontRepo) update(mutate func(cfg *model.StorefrontConfig)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mutate(r.cfg)
	return r.store.Save(storage.DomainStorefront, r.cfg)
}
