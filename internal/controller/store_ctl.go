package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/repository"
	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// StoreController 店铺只读运维接口：目录、路由、运行状态
type StoreController struct {
	catalog    *service.CatalogService
	drafts     *service.DraftService
	carts      *service.CartService
	storefront repository.StorefrontRepository
	routes     repository.LogRouteRepository
}

func NewStoreController(
	catalog *service.CatalogService,
	drafts *service.DraftService,
	carts *service.CartService,
	storefront repository.StorefrontRepository,
	routes repository.LogRouteRepository,
) *StoreController {
	return &StoreController{
		catalog:    catalog,
		drafts:     drafts,
		carts:      carts,
		storefront: storefront,
		routes:     routes,
	}
}

// Status 运行状态概览
func (ctrl *StoreController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	cfg, err := ctrl.storefront.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取配置失败", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category_configured": cfg.CategoryID != "",
		"products":            ctrl.catalog.ProductCount(ctx),
		"bundles":             ctrl.catalog.BundleCount(ctx),
		"active_drafts":       ctrl.drafts.ActiveSessions(),
		"open_carts":          ctrl.carts.OpenCarts(),
		"cart_counters":       cfg.CartCounters,
	})
}

// ListProducts 商品列表
func (ctrl *StoreController) ListProducts(c *gin.Context) {
	entries, err := ctrl.catalog.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取商品失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(entries),
		"items": entries,
	})
}

// ListBundles 套组列表
func (ctrl *StoreController) ListBundles(c *gin.Context) {
	entries, err := ctrl.catalog.ListBundles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取套组失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(entries),
		"items": entries,
	})
}

// GetRoutes 指定 guild 的日志路由表
func (ctrl *StoreController) GetRoutes(c *gin.Context) {
	guildID := c.Query("guild_id")
	if guildID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 guild_id 参数"})
		return
	}

	routes := ctrl.routes.Routes(c.Request.Context(), guildID)
	out := make(map[string]string, len(routes))
	for eventType, channelID := range routes {
		out[string(eventType)] = channelID
	}

	// 未配置的类型也列出来，方便一眼看出缺口
	missing := make([]string, 0)
	for _, t := range model.AllLogEventTypes {
		if _, ok := routes[t]; !ok {
			missing = append(missing, string(t))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"guild_id":     guildID,
		"routes":       out,
		"unconfigured": missing,
	})
}
