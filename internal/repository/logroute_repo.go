package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 仓储接口 ====================

// LogRouteRepository (guild, 事件类型) -> 目标频道 的路由表
// 只有覆盖写（Configure），没有删除；Resolve 查不到返回 ok=false，
// 调用方按"什么都不发"处理，不是错误。
// 鉴权由调用方在入口处做，这里是纯表操作。
type LogRouteRepository interface {
	Configure(ctx context.Context, guildID string, eventType model.LogEventType, channelID string) error
	Resolve(ctx context.Context, guildID string, eventType model.LogEventType) (string, bool)
	// Routes 返回 guild 的全部路由快照，管理接口展示用
	Routes(ctx context.Context, guildID string) map[model.LogEventType]string
}

// ==================== 实现 ====================

type logRouteRepo struct {
	store storage.Store

	mu     sync.RWMutex
	routes model.LogRoutes
}

// NewLogRouteRepository 创建路由仓储，启动时加载 logs_config 域
func NewLogRouteRepository(store storage.Store) (LogRouteRepository, error) {
	r := &logRouteRepo{
		store:  store,
		routes: make(model.LogRoutes),
	}
	if err := store.Load(storage.DomainLogRoutes, &r.routes); err != nil {
		return nil, err
	}
	if r.routes == nil {
		r.routes = make(model.LogRoutes)
	}
	return r, nil
}

func (r *logRouteRepo) Configure(ctx context.Context, guildID string, eventType model.LogEventType, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guildRoutes, ok := r.routes[guildID]
	if !ok {
		guildRoutes = make(map[model.LogEventType]string)
		r.routes[guildID] = guildRoutes
	}

	previous, had := guildRoutes[eventType]
	guildRoutes[eventType] = channelID

	if err := r.store.Save(storage.DomainLogRoutes, r.routes); err != nil {
		if had {
			guildRoutes[eventType] = previous
		} else {
			delete(guildRoutes, eventType)
		}
		return fmt.Errorf("persist log route %s/%s: %w", guildID, eventType, err)
	}
	return nil
}

func (r *logRouteRepo) Resolve(ctx context.Context, guildID string, eventType model.LogEventType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channelID, ok := r.routes[guildID][eventType]
	return channelID, ok
}

func (r *logRouteRepo) Routes(ctx context.Context, guildID string) map[model.LogEventType]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[model.LogEventType]string, len(r.routes[guildID]))
	for eventType, channelID := range r.routes[guildID] {
		snapshot[eventType] = channelID
	}
	return snapshot
}
