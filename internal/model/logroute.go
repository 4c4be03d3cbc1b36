package model

// ==================== 日志路由 ====================

// LogEventType 日志事件类型（固定枚举，新增需同步 /setuplogs 的选项列表）
type LogEventType string

const (
	LogEventJoin    LogEventType = "join"    // 成员加入
	LogEventLeave   LogEventType = "leave"   // 成员退出
	LogEventMessage LogEventType = "message" // 消息
	LogEventEdit    LogEventType = "edit"    // 消息编辑
	LogEventDelete  LogEventType = "delete"  // 消息删除
	LogEventBan     LogEventType = "ban"     // 封禁
	LogEventRole    LogEventType = "role"    // 身份组变更
	LogEventChannel LogEventType = "channel" // 频道变更
	LogEventVoice   LogEventType = "voice"   // 语音进出
)

// AllLogEventTypes 全部事件类型，顺序即 /setuplogs 选项展示顺序
var AllLogEventTypes = []LogEventType{
	LogEventJoin, LogEventLeave, LogEventMessage,
	LogEventEdit, LogEventDelete, LogEventBan,
	LogEventRole, LogEventChannel, LogEventVoice,
}

// Valid 是否为已知事件类型
func (t LogEventType) Valid() bool {
	for _, known := range AllLogEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LogRoutes guild ID -> 事件类型 -> 目标频道 ID（logs_config.json）
// 只有覆盖写入，没有删除操作。
type LogRoutes map[string]map[LogEventType]string
