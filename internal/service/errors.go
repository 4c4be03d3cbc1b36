package service

import "errors"

// ==================== 错误分类 ====================
// 所有业务错误直接回给触发者（仅触发者可见的消息），不重试不上报；
// 展示层用 errors.Is 匹配后翻译成面向用户的文案。

var (
	// ErrForbidden 调用者不是服务器所有者也不是管理员
	ErrForbidden = errors.New("forbidden")

	// ErrNotConfigured 必需的单例配置（如购物车分类）未设置
	ErrNotConfigured = errors.New("not configured")

	// ErrNotFound 引用的商品/面板/草稿不存在
	ErrNotFound = errors.New("not found")

	// ErrEmptyCollection 对空目录发布或提交零选项面板
	ErrEmptyCollection = errors.New("empty collection")

	// ErrDraftConflict 该操作者已有进行中的草稿
	ErrDraftConflict = errors.New("draft already in progress")

	// ErrCartClosing 购物车已进入关闭流程，拒绝重复 close/approve
	ErrCartClosing = errors.New("cart already closing")

	// ErrInvalidInput 输入校验失败（标题为空、价格格式不对等）
	ErrInvalidInput = errors.New("invalid input")
)
