package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// ==================== 存储域 ====================

// Domain 独立的存储域，每个域对应数据目录下的一个 JSON 文件。
// 域之间没有跨文件事务，Save 是整文档覆盖（最后写入者赢）。
type Domain string

const (
	DomainLogRoutes  Domain = "logs_config"   // 日志路由表
	DomainStorefront Domain = "config"        // 店铺配置（单例）
	DomainProducts   Domain = "produtos"      // 商品目录
	DomainBundles    Domain = "produtos_drop" // 下拉面板目录
)

// ==================== Store 接口 ====================

// Store 按域读写整份 JSON 文档
type Store interface {
	// Load 读取整份文档到 out。文件不存在视为空文档，不报错；
	// 内容损坏返回错误，调用方应视为致命（不定义自动修复）。
	Load(domain Domain, out interface{}) error
	// Save 整文档覆盖写入
	Save(domain Domain, v interface{}) error
}

// ==================== 文件实现 ====================

// FileStore 基于数据目录的 Store 实现
// 单进程部署前提：文件层没有跨进程锁，多进程共用同一目录会互相覆盖。
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore 创建文件存储，目录不存在时自动建立
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(domain Domain) string {
	return filepath.Join(s.dir, string(domain)+".json")
}

// Load 实现 Store.Load
func (s *FileStore) Load(domain Domain, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(domain))
	if err != nil {
		if os.IsNotExist(err) {
			// 首次访问：视为空文档，由调用方播种默认值
			return nil
		}
		return fmt.Errorf("read %s: %w", domain, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupted document %s: %w", domain, err)
	}
	return nil
}

// Save 实现 Store.Save，先写临时文件再 rename，避免半截写入
func (s *FileStore) Save(domain Domain, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", domain, err)
	}

	target := s.path(domain)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", domain, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("rename %s: %w", domain, err)
	}
	return nil
}
