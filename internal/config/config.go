package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ==================== 配置结构 ====================

// Config 进程配置，分层加载：默认值 < 配置文件 < 环境变量
type Config struct {
	Discord DiscordConfig `koanf:"discord"`
	Data    DataConfig    `koanf:"data"`
	Draft   DraftConfig   `koanf:"draft"`
	Admin   AdminConfig   `koanf:"admin"`

	// Timezone 展示时间戳用的时区
	Timezone string `koanf:"timezone"`
}

// DiscordConfig 平台接入配置
type DiscordConfig struct {
	// Token 机器人令牌，必填（环境变量 STORE_DISCORD_TOKEN）
	Token string `koanf:"token"`
	// GuildID 非空时命令只注册到该 guild（调试用，全局注册有传播延迟）
	GuildID string `koanf:"guild_id"`
}

// DataConfig 持久化配置
type DataConfig struct {
	Dir string `koanf:"dir"` // JSON 文档所在目录
}

// DraftConfig 草稿回收配置
type DraftConfig struct {
	TTL time.Duration `koanf:"ttl"` // 闲置草稿回收阈值，0 表示不回收
}

// AdminConfig 运维 HTTP 接口配置
type AdminConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr"`
	JWTSecret string `koanf:"jwt_secret"`
	// Password 换取令牌用的运维口令，空则禁用登录接口
	Password string `koanf:"password"`
}

// ==================== 加载 ====================

// DefaultConfigPaths 配置文件搜索路径，取第一个存在的
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/deadpool-store/config.yaml",
}

// EnvPrefix 环境变量前缀：STORE_DISCORD_TOKEN -> discord.token
const EnvPrefix = "STORE_"

func defaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{},
		Data:    DataConfig{Dir: "data"},
		Draft:   DraftConfig{TTL: 30 * time.Minute},
		Admin: AdminConfig{
			Enabled: false,
			Addr:    ":8080",
		},
		Timezone: "America/Sao_Paulo",
	}
}

// Load 分层加载配置
func Load() (*Config, error) {
	k := koanf.New(".")

	// 默认值
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 配置文件（可选）
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// 环境变量（最高优先级）：STORE_ADMIN_JWT_SECRET -> admin.jwt_secret
	envProvider := env.Provider(EnvPrefix, ".", func(key string) string {
		key = strings.TrimPrefix(key, EnvPrefix)
		key = strings.ToLower(key)
		return strings.Replace(key, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 基本校验
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token é obrigatório (STORE_DISCORD_TOKEN)")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir é obrigatório")
	}
	if c.Admin.Enabled && c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin.jwt_secret é obrigatório quando admin.enabled")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone inválido %q: %w", c.Timezone, err)
	}
	return nil
}

// Location 解析配置的时区（Validate 通过后不会失败）
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func findConfigFile() string {
	if path := os.Getenv("STORE_CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
