package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/bot"
	"github.com/tevis-trtr/Deadpool-store/internal/config"
	"github.com/tevis-trtr/Deadpool-store/internal/controller"
	"github.com/tevis-trtr/Deadpool-store/internal/middleware"
	"github.com/tevis-trtr/Deadpool-store/internal/repository"
	"github.com/tevis-trtr/Deadpool-store/internal/router"
	"github.com/tevis-trtr/Deadpool-store/internal/service"
	"github.com/tevis-trtr/Deadpool-store/internal/storage"
	"github.com/tevis-trtr/Deadpool-store/internal/task"
	"github.com/tevis-trtr/Deadpool-store/pkg/utils"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := zerolog.New(os.Stderr)
		fallbackLog.Fatal().Err(err).Msg("加载配置失败")
	}

	log := initLogger()

	// 2. 初始化依赖
	deps, err := initDependencies(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化依赖失败")
	}

	// 3. 连接 Discord
	if err := deps.Bot.Open(); err != nil {
		log.Fatal().Err(err).Msg("连接 Discord 失败")
	}
	log.Info().Msg("Discord 已连接")

	// 4. 启动定时任务
	if err := deps.CleanupTask.Start(); err != nil {
		log.Fatal().Err(err).Msg("启动定时任务失败")
	}

	// 5. 管理接口（可选）
	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		adminSrv = startAdminServer(cfg, deps, log)
	}

	// 6. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("正在关闭服务...")
	shutdown(deps, adminSrv, log)
	log.Info().Msg("服务已退出")
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Store *storage.FileStore
	Repos *Repositories

	Catalog *service.CatalogService
	Drafts  *service.DraftService
	Carts   *service.CartService

	Bot         *bot.Bot
	CleanupTask *task.DraftCleanupTask
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Product    repository.ProductRepository
	Bundle     repository.BundleRepository
	Storefront repository.StorefrontRepository
	LogRoute   repository.LogRouteRepository
}

// Controllers 控制器集合
type Controllers struct {
	Auth  *controller.AuthController
	Store *controller.StoreController
}

// ==================== 初始化函数 ====================

// initLogger 初始化日志
func initLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	loc := cfg.Location()

	// -------- 存储层 --------
	store, err := storage.NewFileStore(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	// -------- Repo 层 --------
	repos, err := initRepositories(store)
	if err != nil {
		return nil, err
	}

	// -------- 业务服务 --------
	catalogSvc := service.NewCatalogService(
		repos.Product, repos.Bundle,
		utils.NewImageProber(), loc, log,
	)
	draftSvc := service.NewDraftService(catalogSvc, cfg.Draft.TTL, log)

	// -------- Discord 层 --------
	// CartService 和 Bot 互相依赖：网关和鉴权由 Bot 提供，
	// 购物车服务在 Bot 创建后补装配
	discordBot, err := bot.New(cfg.Discord.Token, cfg.Discord.GuildID, loc, bot.Deps{
		Catalog:    catalogSvc,
		Drafts:     draftSvc,
		Storefront: repos.Storefront,
		Routes:     repos.LogRoute,
	}, log)
	if err != nil {
		return nil, err
	}

	cartSvc := service.NewCartService(repos.Storefront, discordBot.Gateway(), discordBot.Authorizer(), log)
	discordBot.AttachCarts(cartSvc)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:  controller.NewAuthController(cfg.Admin.Password),
		Store: controller.NewStoreController(catalogSvc, draftSvc, cartSvc, repos.Storefront, repos.LogRoute),
	}

	return &Dependencies{
		Store:       store,
		Repos:       repos,
		Catalog:     catalogSvc,
		Drafts:      draftSvc,
		Carts:       cartSvc,
		Bot:         discordBot,
		CleanupTask: task.NewDraftCleanupTask(draftSvc, log),
		Controllers: controllers,
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(store *storage.FileStore) (*Repositories, error) {
	productRepo, err := repository.NewProductRepository(store)
	if err != nil {
		return nil, err
	}
	bundleRepo, err := repository.NewBundleRepository(store)
	if err != nil {
		return nil, err
	}
	storefrontRepo, err := repository.NewStorefrontRepository(store)
	if err != nil {
		return nil, err
	}
	logRouteRepo, err := repository.NewLogRouteRepository(store)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Product:    productRepo,
		Bundle:     bundleRepo,
		Storefront: storefrontRepo,
		LogRoute:   logRouteRepo,
	}, nil
}

// ==================== 管理接口 ====================

// startAdminServer 启动只读运维接口
func startAdminServer(cfg *config.Config, deps *Dependencies, log zerolog.Logger) *http.Server {
	jwtCfg := middleware.DefaultJWTConfig()
	jwtCfg.SecretKey = cfg.Admin.JWTSecret
	middleware.SetJWTConfig(jwtCfg)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, deps.Controllers.Auth, deps.Controllers.Store)

	srv := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Info().Str("addr", cfg.Admin.Addr).Msg("管理接口已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("管理接口启动失败")
		}
	}()

	return srv
}

// ==================== 关闭 ====================

// shutdown 按依赖反序收尾，最多等待 10 秒
func shutdown(deps *Dependencies, adminSrv *http.Server, log zerolog.Logger) {
	deps.CleanupTask.Stop()

	if err := deps.Bot.Close(); err != nil {
		log.Error().Err(err).Msg("断开 Discord 失败")
	}

	if adminSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := adminSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("管理接口强制关闭")
		}
	}
}
