package model

// ==================== 下拉面板（Bundle） ====================

// BundleIDPrefix 面板 ID 前缀（drop_1, drop_2, ...）
const BundleIDPrefix = "drop_"

// 默认 emoji
const (
	DefaultPanelEmoji  = "📦" // 面板未填 emoji 时的默认值
	DefaultOptionEmoji = "💎" // 选项未填 emoji 时的默认值
)

// BundleOption 面板中的一个选项
type BundleOption struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"` // 为空时默认 "Valor: {preco}"
	Preco     string `json:"preco"`    // 价格文本，同 Product.Preco
	Emoji     string `json:"emoji"`
}

// Bundle 下拉面板，带一组有序选项
// 持久化为 produtos_drop.json 中以面板 ID 为键的对象。
// 选项在草稿阶段只能追加，提交入库后冻结；零选项的面板不允许提交。
type Bundle struct {
	TituloPainel    string `json:"tituloPainel"`
	DescricaoPainel string `json:"descricaoPainel"`
	EmojiPainel     string `json:"emojiPainel"`
	ImagemURL       string `json:"imagemUrl,omitempty"`
	TipoImagem      string `json:"tipoImagem"`

	Opcoes []BundleOption `json:"opcoes"`

	CriadoEm string `json:"criadoEm"`
}
