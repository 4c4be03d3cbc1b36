package model

// ==================== 店铺配置 ====================

// DefaultPixInfo PIX 未配置时的占位提示
const DefaultPixInfo = "Configure seu PIX com o comando /setup"

// StorefrontConfig 店铺全局配置（config.json，进程内单例）
// CartCounters 中每个 guild 的计数器只增不减，即使购物车频道被删除也不回收编号。
type StorefrontConfig struct {
	// CategoryID 生成购物车频道所在的分类频道 ID；为空表示未配置
	CategoryID string `json:"categoryId"`

	// PixInfo 支付说明文本，点击 "Ver PIX" 时原样展示
	PixInfo string `json:"pixInfo"`

	// CartCounters guild ID -> 已开购物车数
	CartCounters map[string]int `json:"cartCounters"`

	// VoiceChannelID /botvoz 最近一次接入的语音频道
	VoiceChannelID string `json:"voiceChannelId,omitempty"`
}

// NewStorefrontConfig 返回带种子值的默认配置
func NewStorefrontConfig() *StorefrontConfig {
	return &StorefrontConfig{
		PixInfo:      DefaultPixInfo,
		CartCounters: make(map[string]int),
	}
}

// ==================== 购物车状态 ====================

// CartState 购物车状态机：Open -> Closing -> Closed，单向推进
type CartState int

const (
	CartStateOpen CartState = iota
	CartStateClosing
	CartStateClosed
)

func (s CartState) String() string {
	switch s {
	case CartStateOpen:
		return "open"
	case CartStateClosing:
		return "closing"
	case CartStateClosed:
		return "closed"
	}
	return "unknown"
}
