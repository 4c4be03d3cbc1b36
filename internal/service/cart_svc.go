package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/repository"
)

// ==================== 外部依赖 ====================

// ChannelGateway 平台侧频道操作，由 discord 层实现
type ChannelGateway interface {
	// CreateCartChannel 在分类下建一个仅买家与特权成员可见的文字频道
	CreateCartChannel(ctx context.Context, guildID, categoryID, buyerID, name string) (channelID string, err error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// Authorizer 特权判定：服务器所有者或管理员
type Authorizer interface {
	IsPrivileged(guildID, userID string) bool
}

// ==================== 购物车 ====================

// Cart 一次购买尝试对应的专属频道
// 状态机 Open -> Closing -> Closed 单向推进；Closing 之后拒绝重复
// close/approve。进程重启丢弃在途的延迟删除，频道留在原地（可接受）。
type Cart struct {
	ChannelID string
	GuildID   string
	BuyerID   string
	Number    int
	ProductID string
	Product   model.Product

	state model.CartState
}

// State 当前状态（仅读），内部变更走 CartService
func (c *Cart) State() model.CartState { return c.state }

// PaymentInfo "Ver PIX" 展示的内容
type PaymentInfo struct {
	PixInfo string
	Preco   string
}

// ==================== 服务 ====================

// DefaultCloseDelay 关闭倒计时，固定值，触发后不可取消
const DefaultCloseDelay = 5 * time.Second

// CartService 购物车生命周期
type CartService struct {
	storefront repository.StorefrontRepository
	gateway    ChannelGateway
	authz      Authorizer
	closeDelay time.Duration
	log        zerolog.Logger

	mu    sync.Mutex
	carts map[string]*Cart // channel id -> cart
}

// NewCartService 创建购物车服务
func NewCartService(
	storefront repository.StorefrontRepository,
	gateway ChannelGateway,
	authz Authorizer,
	log zerolog.Logger,
) *CartService {
	return &CartService{
		storefront: storefront,
		gateway:    gateway,
		authz:      authz,
		closeDelay: DefaultCloseDelay,
		log:        log.With().Str("component", "cart").Logger(),
		carts:      make(map[string]*Cart),
	}
}

// SetCloseDelay 调整关闭倒计时（测试用）
func (s *CartService) SetCloseDelay(d time.Duration) { s.closeDelay = d }

// ==================== 开车 ====================

// OpenCart 为一次购买开专属频道
//
// 顺序是刻意的：先取号并落盘计数器，再做任何可观察的副作用
// （建频道失败时编号作废不复用，宁可跳号不可重号）。
func (s *CartService) OpenCart(ctx context.Context, guildID, buyerID, buyerName, productID string, product model.Product) (*Cart, error) {
	cfg, err := s.storefront.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.CategoryID == "" {
		return nil, fmt.Errorf("%w: categoria de vendas", ErrNotConfigured)
	}

	number, err := s.storefront.NextCartNumber(ctx, guildID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("🛒%s-%d", buyerName, number)
	channelID, err := s.gateway.CreateCartChannel(ctx, guildID, cfg.CategoryID, buyerID, name)
	if err != nil {
		return nil, fmt.Errorf("create cart channel: %w", err)
	}

	cart := &Cart{
		ChannelID: channelID,
		GuildID:   guildID,
		BuyerID:   buyerID,
		Number:    number,
		ProductID: productID,
		Product:   product,
		state:     model.CartStateOpen,
	}

	s.mu.Lock()
	s.carts[channelID] = cart
	s.mu.Unlock()

	s.log.Info().Str("guild", guildID).Str("channel", channelID).Int("number", number).
		Str("product", productID).Msg("购物车已创建")
	return cart, nil
}

// ==================== 频道内动作 ====================

// RevealPayment 返回 PIX 说明与价格；车内任何参与者可看，无鉴权
func (s *CartService) RevealPayment(ctx context.Context, channelID string) (*PaymentInfo, error) {
	cart, err := s.get(channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.storefront.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentInfo{PixInfo: cfg.PixInfo, Preco: cart.Product.Preco}, nil
}

// Approve 人工确认收款。只有所有者/管理员可点；不关车，关车是独立动作
func (s *CartService) Approve(ctx context.Context, channelID, requesterID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: carrinho %s", ErrNotFound, channelID)
	}
	if cart.state != model.CartStateOpen {
		return nil, ErrCartClosing
	}
	if !s.authz.IsPrivileged(cart.GuildID, requesterID) {
		return nil, ErrForbidden
	}

	s.log.Info().Str("channel", channelID).Str("by", requesterID).Msg("支付已批准")
	return cart, nil
}

// Close 进入关闭流程：倒计时固定时长后删除频道。
// 窗口期内的第二次 close/approve 会拿到 ErrCartClosing；倒计时不可取消。
func (s *CartService) Close(ctx context.Context, channelID, requesterID string) (*Cart, error) {
	s.mu.Lock()
	cart, ok := s.carts[channelID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: carrinho %s", ErrNotFound, channelID)
	}
	if cart.state != model.CartStateOpen {
		s.mu.Unlock()
		return nil, ErrCartClosing
	}
	if !s.authz.IsPrivileged(cart.GuildID, requesterID) {
		s.mu.Unlock()
		return nil, ErrForbidden
	}
	cart.state = model.CartStateClosing
	s.mu.Unlock()

	go s.finishClose(cart)

	s.log.Info().Str("channel", channelID).Str("by", requesterID).
		Dur("delay", s.closeDelay).Msg("购物车进入关闭倒计时")
	return cart, nil
}

func (s *CartService) finishClose(cart *Cart) {
	time.Sleep(s.closeDelay)

	if err := s.gateway.DeleteChannel(context.Background(), cart.ChannelID); err != nil {
		s.log.Error().Err(err).Str("channel", cart.ChannelID).Msg("删除购物车频道失败")
	}

	s.mu.Lock()
	cart.state = model.CartStateClosed
	delete(s.carts, cart.ChannelID)
	s.mu.Unlock()
}

// ==================== 查询 ====================

// Lookup 按频道查车（平台事件回调用，比如检测付款凭证）
func (s *CartService) Lookup(channelID string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[channelID]
	return cart, ok
}

// OpenCarts 在场购物车数（运维接口展示用）
func (s *CartService) OpenCarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *CartService) get(channelID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: carrinho %s", ErrNotFound, channelID)
	}
	return cart, nil
}
