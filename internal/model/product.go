package model

// ==================== 商品 ====================

// Product 商品（单品）
// 持久化为 produtos.json 中以商品 ID 为键的对象，字段名是对外存储契约，
// 创建后不可变（没有更新操作，只能直接改文件）。
type Product struct {
	// --- 基本信息 ---
	Titulo    string `json:"titulo"`    // 标题
	Descricao string `json:"descricao"` // 描述
	// Preco 价格原文，按文本保存（如 "29.90"），下游不做数值解析
	Preco string `json:"preco"`

	// --- 图片 ---
	ImagemURL  string `json:"imagemUrl,omitempty"`
	TipoImagem string `json:"tipoImagem"` // gif / png / jpeg / webp

	// --- 时间戳 ---
	CriadoEm string `json:"criadoEm"` // ISO-8601，America/Sao_Paulo
}

// ProductIDPrefix 商品 ID 前缀，编号从 1 开始递增（prod_1, prod_2, ...）
const ProductIDPrefix = "prod_"

// DefaultImageType 图片类型探测失败/无图时的默认值
const DefaultImageType = "gif"
