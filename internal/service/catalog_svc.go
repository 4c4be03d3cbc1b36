package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/repository"
)

// ==================== 外部依赖 ====================

// ImageProber 根据图片 URL 判断图片类型（gif/png/jpeg/webp），
// 探测失败返回默认值，不阻断创建流程。实现见 pkg/utils。
type ImageProber interface {
	Probe(ctx context.Context, url string) string
}

// ==================== 输入 ====================

// CreateProductInput 创建商品入参
// 价格按文本保存，只校验格式（整数或最多两位小数，逗号/点都接受），不做数值换算。
type CreateProductInput struct {
	Titulo    string `validate:"required,max=100"`
	Descricao string `validate:"required,max=1000"`
	Preco     string `validate:"required,max=10,price"`
	ImagemURL string `validate:"omitempty,url,max=500"`
}

// pricePattern 价格文本格式：29 / 29.9 / 29,90
var pricePattern = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)

// ==================== 服务 ====================

// CatalogService 目录服务：商品与面板的创建、列表
type CatalogService struct {
	products repository.ProductRepository
	bundles  repository.BundleRepository
	prober   ImageProber
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// NewCatalogService 创建目录服务
func NewCatalogService(
	products repository.ProductRepository,
	bundles repository.BundleRepository,
	prober ImageProber,
	loc *time.Location,
	log zerolog.Logger,
) *CatalogService {
	v := validator.New()
	// 注册价格格式校验
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return pricePattern.MatchString(fl.Field().String())
	})

	return &CatalogService{
		products: products,
		bundles:  bundles,
		prober:   prober,
		validate: v,
		loc:      loc,
		now:      time.Now,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// ==================== 商品 ====================

// CreateProduct 创建商品：校验入参、探测图片类型、分配顺序 ID 并持久化
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (string, *model.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	product := &model.Product{
		Titulo:     input.Titulo,
		Descricao:  input.Descricao,
		Preco:      input.Preco,
		ImagemURL:  input.ImagemURL,
		TipoImagem: s.probeImageType(ctx, input.ImagemURL),
		CriadoEm:   s.now().In(s.loc).Format(time.RFC3339),
	}

	id, err := s.products.Create(ctx, product)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("id", id).Str("titulo", product.Titulo).Msg("商品已创建")
	return id, product, nil
}

// GetProduct 按 ID 查商品
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: produto %s", ErrNotFound, id)
	}
	return product, nil
}

// ListProducts 列表快照，顺序为编号序
func (s *CatalogService) ListProducts(ctx context.Context) ([]repository.ProductEntry, error) {
	return s.products.List(ctx)
}

// ProductCount 已登记商品数
func (s *CatalogService) ProductCount(ctx context.Context) int {
	return s.products.Count(ctx)
}

// ==================== 面板 ====================

// CreateBundle 提交草稿成品入库，零选项拒绝且不动目录
func (s *CatalogService) CreateBundle(ctx context.Context, bundle *model.Bundle) (string, error) {
	if len(bundle.Opcoes) == 0 {
		return "", fmt.Errorf("%w: painel sem opções", ErrEmptyCollection)
	}

	if bundle.EmojiPainel == "" {
		bundle.EmojiPainel = model.DefaultPanelEmoji
	}
	bundle.CriadoEm = s.now().In(s.loc).Format(time.RFC3339)

	id, err := s.bundles.Create(ctx, bundle)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("id", id).Int("opcoes", len(bundle.Opcoes)).Msg("面板已创建")
	return id, nil
}

// GetBundle 按 ID 查面板
func (s *CatalogService) GetBundle(ctx context.Context, id string) (*model.Bundle, error) {
	bundle, err := s.bundles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: painel %s", ErrNotFound, id)
	}
	return bundle, nil
}

// ListBundles 列表快照
func (s *CatalogService) ListBundles(ctx context.Context) ([]repository.BundleEntry, error) {
	return s.bundles.List(ctx)
}

// BundleCount 已登记面板数
func (s *CatalogService) BundleCount(ctx context.Context) int {
	return s.bundles.Count(ctx)
}

// ==================== 内部 ====================

func (s *CatalogService) probeImageType(ctx context.Context, url string) string {
	if url == "" || s.prober == nil {
		return model.DefaultImageType
	}
	return s.prober.Probe(ctx, url)
}
