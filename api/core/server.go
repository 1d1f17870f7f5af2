package core

import (
	"net/http"
	"time"

	"github.com/anoixa/daijo-gallery/api/common"
	"github.com/anoixa/daijo-gallery/api/middleware"
	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter 创建 gin 引擎并注册中间件与路由
func setupRouter(cfg *config.Config, deps *RouterDependencies) *gin.Engine {
	router := gin.New()

	// 全局中间件
	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	router.SetTrustedProxies(nil)

	router.Use(middleware.SecurityHeaders())

	// 请求ID追踪
	router.Use(middleware.RequestID())

	// 基础监控指标
	router.Use(middleware.Metrics())

	// 并发限制
	concurrencyLimiter := middleware.NewConcurrencyLimiter(cfg.MaxConcurrency)
	router.Use(concurrencyLimiter.Middleware())

	router.NoRoute(func(c *gin.Context) {
		common.RespondError(c, http.StatusNotFound, "Not found")
	})

	RegisterRoutes(router, deps)
	return router
}

// corsConfig 未配置来源或配置为 * 时允许所有来源
func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := cfg.AllowOrigins()
	for _, origin := range origins {
		if origin == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

// StartServer 创建 http.Server，返回的 cleanup 用于停止后台任务
func StartServer(cfg *config.Config, container *app.Container) (*http.Server, func()) {
	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
	}

	router := setupRouter(cfg, &RouterDependencies{
		Gallery:        container.GetGalleryService(),
		Artist:         container.GetArtistService(),
		Health:         NewHealthHandler(container.GetDatabaseProvider(), container.GetCacheProvider(), container.GetStorageProvider()),
		APIRateLimiter: apiRateLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, cleanup
}
