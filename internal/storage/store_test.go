package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 测试辅助 ====================

func setupStore(t *testing.T) *FileStore {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	return store
}

// ==================== 单元测试 ====================

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := setupStore(t)

	products := map[string]*model.Product{}
	if err := store.Load(DomainProducts, &products); err != nil {
		t.Fatalf("缺失文件应视为空文档: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("空文档应为空 map, got %d", len(products))
	}
}

func TestFileStore_RoundTripProducts(t *testing.T) {
	store := setupStore(t)

	saved := map[string]*model.Product{
		"prod_1": {
			Titulo:     "VIP",
			Descricao:  "acesso vip",
			Preco:      "29.90",
			ImagemURL:  "https://example.com/vip.gif",
			TipoImagem: "gif",
			CriadoEm:   "2026-01-02T15:04:05-03:00",
		},
	}
	if err := store.Save(DomainProducts, saved); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded := map[string]*model.Product{}
	if err := store.Load(DomainProducts, &loaded); err != nil {
		t.Fatalf("读取失败: %v", err)
	}

	got, ok := loaded["prod_1"]
	if !ok {
		t.Fatal("prod_1 丢失")
	}
	if *got != *saved["prod_1"] {
		t.Fatalf("往返不一致: %+v != %+v", got, saved["prod_1"])
	}
}

func TestFileStore_RoundTripBundles(t *testing.T) {
	store := setupStore(t)

	saved := map[string]*model.Bundle{
		"drop_1": {
			TituloPainel:    "Escolha seu pacote",
			DescricaoPainel: "Selecione a quantidade",
			EmojiPainel:     "💎",
			TipoImagem:      "gif",
			Opcoes: []model.BundleOption{
				{Nome: "10 SALAS", Descricao: "Valor: 2.90", Preco: "2.90", Emoji: "💰"},
				{Nome: "20 SALAS", Descricao: "Valor: 4.90", Preco: "4.90", Emoji: "💎"},
			},
			CriadoEm: "2026-01-02T15:04:05-03:00",
		},
	}
	if err := store.Save(DomainBundles, saved); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded := map[string]*model.Bundle{}
	if err := store.Load(DomainBundles, &loaded); err != nil {
		t.Fatalf("读取失败: %v", err)
	}

	got := loaded["drop_1"]
	if got == nil {
		t.Fatal("drop_1 丢失")
	}
	if got.TituloPainel != "Escolha seu pacote" || len(got.Opcoes) != 2 {
		t.Fatalf("面板字段丢失: %+v", got)
	}
	if got.Opcoes[1].Preco != "4.90" {
		t.Fatalf("选项顺序/字段不一致: %+v", got.Opcoes)
	}
}

func TestFileStore_RoundTripStorefront(t *testing.T) {
	store := setupStore(t)

	cfg := model.NewStorefrontConfig()
	cfg.CategoryID = "123456"
	cfg.PixInfo = "Chave PIX: loja@example.com"
	cfg.CartCounters["g1"] = 7
	cfg.VoiceChannelID = "999"

	if err := store.Save(DomainStorefront, cfg); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded := &model.StorefrontConfig{}
	if err := store.Load(DomainStorefront, loaded); err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if loaded.CategoryID != "123456" || loaded.PixInfo != "Chave PIX: loja@example.com" {
		t.Fatalf("配置字段丢失: %+v", loaded)
	}
	if loaded.CartCounters["g1"] != 7 {
		t.Fatalf("计数器丢失: %+v", loaded.CartCounters)
	}
	if loaded.VoiceChannelID != "999" {
		t.Fatalf("语音频道丢失: %+v", loaded)
	}
}

func TestFileStore_RoundTripLogRoutes(t *testing.T) {
	store := setupStore(t)

	routes := model.LogRoutes{
		"g1": {model.LogEventJoin: "c1", model.LogEventBan: "c2"},
	}
	if err := store.Save(DomainLogRoutes, routes); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded := model.LogRoutes{}
	if err := store.Load(DomainLogRoutes, &loaded); err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if loaded["g1"][model.LogEventJoin] != "c1" || loaded["g1"][model.LogEventBan] != "c2" {
		t.Fatalf("路由表不一致: %+v", loaded)
	}
}

func TestFileStore_CorruptedDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "produtos.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("写坏文件失败: %v", err)
	}

	products := map[string]*model.Product{}
	if err := store.Load(DomainProducts, &products); err == nil {
		t.Fatal("损坏文档应报错")
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := setupStore(t)

	if err := store.Save(DomainProducts, map[string]*model.Product{"prod_1": {Titulo: "A"}}); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := store.Save(DomainProducts, map[string]*model.Product{"prod_2": {Titulo: "B"}}); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded := map[string]*model.Product{}
	if err := store.Load(DomainProducts, &loaded); err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if _, ok := loaded["prod_1"]; ok {
		t.Fatal("整文档覆盖后旧键不应存在")
	}
	if loaded["prod_2"].Titulo != "B" {
		t.Fatalf("覆盖写入不一致: %+v", loaded)
	}
}
