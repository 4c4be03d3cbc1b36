package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/repository"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
)

// ==================== 测试辅助 ====================

// fakeGateway 记录频道操作的假网关
type fakeGateway struct {
	mu        sync.Mutex
	created   []string
	deleted   []string
	deletedAt time.Time
	next      int
	failNext  bool
}

func (g *fakeGateway) CreateCartChannel(ctx context.Context, guildID, categoryID, buyerID, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext {
		g.failNext = false
		return "", errors.New("platform refused")
	}
	g.next++
	id := fmt.Sprintf("canal-%d", g.next)
	g.created = append(g.created, name)
	return id, nil
}

func (g *fakeGateway) DeleteChannel(ctx context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, channelID)
	g.deletedAt = time.Now()
	return nil
}

func (g *fakeGateway) deletedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deleted)
}

// fakeAuthz 固定的特权名单
type fakeAuthz struct{ privileged map[string]bool }

func (a *fakeAuthz) IsPrivileged(guildID, userID string) bool { return a.privileged[userID] }

func setupCart(t *testing.T, configured bool) (*CartService, *fakeGateway, repository.StorefrontRepository) {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	storefront, err := repository.NewStorefrontRepository(store)
	if err != nil {
		t.Fatalf("创建配置仓储失败: %v", err)
	}
	if configured {
		if err := storefront.SetCategory(context.Background(), "cat-1"); err != nil {
			t.Fatalf("设置分类失败: %v", err)
		}
	}

	gateway := &fakeGateway{}
	authz := &fakeAuthz{privileged: map[string]bool{"dono": true, "admin": true}}
	svc := NewCartService(storefront, gateway, authz, zerolog.Nop())
	svc.SetCloseDelay(30 * time.Millisecond)
	return svc, gateway, storefront
}

var vipProduct = model.Product{Titulo: "VIP", Descricao: "desc", Preco: "29.90"}

// ==================== 开车 ====================

func TestCart_OpenWithoutCategory(t *testing.T) {
	svc, gateway, storefront := setupCart(t, false)
	ctx := context.Background()

	_, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("未配置分类应报 ErrNotConfigured: %v", err)
	}

	// 没有可观察副作用：不建频道、不消耗编号
	if len(gateway.created) != 0 {
		t.Fatal("不应创建频道")
	}
	cfg, _ := storefront.Get(ctx)
	if cfg.CartCounters["g1"] != 0 {
		t.Fatalf("计数器不应递增: %d", cfg.CartCounters["g1"])
	}
}

func TestCart_OpenAssignsSequence(t *testing.T) {
	svc, gateway, storefront := setupCart(t, true)
	ctx := context.Background()

	cart0, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)
	if err != nil {
		t.Fatalf("开车失败: %v", err)
	}
	cart1, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)
	if err != nil {
		t.Fatalf("开车失败: %v", err)
	}

	if cart0.Number != 0 || cart1.Number != 1 {
		t.Fatalf("编号应从 0 递增: %d, %d", cart0.Number, cart1.Number)
	}
	if gateway.created[0] != "🛒fulano-0" || gateway.created[1] != "🛒fulano-1" {
		t.Fatalf("频道名错误: %v", gateway.created)
	}
	cfg, _ := storefront.Get(ctx)
	if cfg.CartCounters["g1"] != 2 {
		t.Fatalf("2 次开车后计数器应为 2: %d", cfg.CartCounters["g1"])
	}
}

func TestCart_OpenConcurrentUniqueNumbers(t *testing.T) {
	svc, _, storefront := setupCart(t, true)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)
			if err != nil {
				t.Errorf("开车失败: %v", err)
				return
			}
			numbers <- cart.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("编号重复: %d", num)
		}
		seen[num] = true
	}
	cfg, _ := storefront.Get(ctx)
	if cfg.CartCounters["g1"] != n {
		t.Fatalf("计数器应为 %d: %d", n, cfg.CartCounters["g1"])
	}
}

func TestCart_ChannelFailureBurnsNumber(t *testing.T) {
	svc, gateway, storefront := setupCart(t, true)
	ctx := context.Background()

	gateway.failNext = true
	if _, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct); err == nil {
		t.Fatal("平台拒绝应报错")
	}

	// 编号先落盘后建频道：失败的编号作废不复用
	cart, err := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)
	if err != nil {
		t.Fatalf("开车失败: %v", err)
	}
	if cart.Number != 1 {
		t.Fatalf("失败消耗的编号不应复用: %d", cart.Number)
	}
	cfg, _ := storefront.Get(ctx)
	if cfg.CartCounters["g1"] != 2 {
		t.Fatalf("计数器应为 2: %d", cfg.CartCounters["g1"])
	}
}

// ==================== 频道内动作 ====================

func TestCart_RevealPaymentNoAuth(t *testing.T) {
	svc, _, storefront := setupCart(t, true)
	ctx := context.Background()

	_ = storefront.SetPixInfo(ctx, "Chave PIX: loja@example.com")
	cart, _ := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)

	// 无鉴权，任何参与者可看
	info, err := svc.RevealPayment(ctx, cart.ChannelID)
	if err != nil {
		t.Fatalf("查看 PIX 失败: %v", err)
	}
	if info.PixInfo != "Chave PIX: loja@example.com" || info.Preco != "29.90" {
		t.Fatalf("支付信息不一致: %+v", info)
	}
}

func TestCart_ApproveAuthorization(t *testing.T) {
	svc, _, _ := setupCart(t, true)
	ctx := context.Background()

	cart, _ := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)

	// 普通成员（包括买家本人）不能批准
	if _, err := svc.Approve(ctx, cart.ChannelID, "buyer"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("非特权成员应报 ErrForbidden: %v", err)
	}

	// 批准不关车
	if _, err := svc.Approve(ctx, cart.ChannelID, "admin"); err != nil {
		t.Fatalf("管理员批准失败: %v", err)
	}
	if cart.State() != model.CartStateOpen {
		t.Fatalf("批准后购物车应保持 Open: %v", cart.State())
	}
	// 可以再次批准（仍在 Open）
	if _, err := svc.Approve(ctx, cart.ChannelID, "dono"); err != nil {
		t.Fatalf("所有者批准失败: %v", err)
	}
}

func TestCart_CloseDeletesAfterDelay(t *testing.T) {
	svc, gateway, _ := setupCart(t, true)
	ctx := context.Background()

	cart, _ := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)

	if _, err := svc.Close(ctx, cart.ChannelID, "buyer"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("非特权成员不能关车: %v", err)
	}

	closedAt := time.Now()
	if _, err := svc.Close(ctx, cart.ChannelID, "admin"); err != nil {
		t.Fatalf("关车失败: %v", err)
	}

	// 倒计时未到不删除
	if gateway.deletedCount() != 0 {
		t.Fatal("倒计时内不应删除频道")
	}

	deadline := time.Now().Add(time.Second)
	for gateway.deletedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if gateway.deletedCount() != 1 {
		t.Fatal("倒计时后应删除频道")
	}
	if elapsed := gateway.deletedAt.Sub(closedAt); elapsed < 30*time.Millisecond {
		t.Fatalf("删除早于倒计时: %v", elapsed)
	}
	if gateway.deleted[0] != cart.ChannelID {
		t.Fatalf("删错频道: %s", gateway.deleted[0])
	}
}

func TestCart_RepeatCloseRejected(t *testing.T) {
	svc, gateway, _ := setupCart(t, true)
	svc.SetCloseDelay(80 * time.Millisecond)
	ctx := context.Background()

	cart, _ := svc.OpenCart(ctx, "g1", "buyer", "fulano", "prod_1", vipProduct)

	if _, err := svc.Close(ctx, cart.ChannelID, "admin"); err != nil {
		t.Fatalf("关车失败: %v", err)
	}

	// 倒计时窗口内：重复 close / approve 都被拒绝，且不会重启倒计时
	if _, err := svc.Close(ctx, cart.ChannelID, "dono"); !errors.Is(err, ErrCartClosing) {
		t.Fatalf("重复关车应报 ErrCartClosing: %v", err)
	}
	if _, err := svc.Approve(ctx, cart.ChannelID, "admin"); !errors.Is(err, ErrCartClosing) {
		t.Fatalf("关闭中批准应报 ErrCartClosing: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for gateway.deletedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if gateway.deletedCount() != 1 {
		t.Fatalf("频道应只删除一次: %d", gateway.deletedCount())
	}

	// 删除后购物车出表
	if _, ok := svc.Lookup(cart.ChannelID); ok {
		t.Fatal("已关闭的购物车不应在表中")
	}
}

func TestCart_ActionsOnUnknownChannel(t *testing.T) {
	svc, _, _ := setupCart(t, true)
	ctx := context.Background()

	if _, err := svc.RevealPayment(ctx, "canal-x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("应报 ErrNotFound: %v", err)
	}
	if _, err := svc.Approve(ctx, "canal-x", "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("应报 ErrNotFound: %v", err)
	}
	if _, err := svc.Close(ctx, "canal-x", "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("应报 ErrNotFound: %v", err)
	}
}
