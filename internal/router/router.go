package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tevis-trtr/Deadpool-store/internal/controller"
	"github.com/tevis-trtr/Deadpool-store/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtrl *controller.AuthController,
	storeCtl *controller.StoreController) {
	// 1. 健康检查，无鉴权
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			// POST /api/auth/login，按 IP 冷却防爆破
			auth.POST("/login", middleware.LoginRateLimit(2*time.Second), authCtrl.Login)
		}

		// store 只读运维组，需 Token
		store := api.Group("/store", middleware.JWTAuth())
		{
			// GET /api/store/status
			store.GET("/status", storeCtl.Status)
			store.GET("/products", storeCtl.ListProducts)
			store.GET("/bundles", storeCtl.ListBundles)
			// GET /api/store/routes?guild_id=...
			store.GET("/routes", storeCtl.GetRoutes)
		}
	}
}
