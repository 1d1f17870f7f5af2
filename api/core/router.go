package core

import (
	"net/http"

	"github.com/anoixa/daijo-gallery/api/common"
	handlerArtist "github.com/anoixa/daijo-gallery/api/handler/artist"
	handlerWorks "github.com/anoixa/daijo-gallery/api/handler/works"
	"github.com/anoixa/daijo-gallery/api/middleware"
	"github.com/anoixa/daijo-gallery/config"
	"github.com/gin-gonic/gin"
)

// publicMaxAge 公共接口的浏览器缓存时间（秒）
const publicMaxAge = 60

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Gallery        handlerWorks.Gallery
	Artist         handlerArtist.ProfileSource
	Health         *HealthHandler
	APIRateLimiter *middleware.IPRateLimiter
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	if deps.Health != nil {
		router.GET("/health", deps.Health.Handle)
	}

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	worksHandler := handlerWorks.NewHandler(deps.Gallery)
	artistHandler := handlerArtist.NewHandler(deps.Artist)

	v1 := router.Group("/api/v1")
	if deps.APIRateLimiter != nil {
		v1.Use(deps.APIRateLimiter.Middleware())
	}
	v1.Use(middleware.PublicCache(publicMaxAge))
	{
		worksGroup := v1.Group("/works")
		{
			worksGroup.GET("", worksHandler.ListWorks)               // GET /api/v1/works?page=&per_page=&q=&tag=
			worksGroup.GET("/featured", worksHandler.ListFeatured)   // GET /api/v1/works/featured
			worksGroup.GET("/:id", worksHandler.GetWork)             // GET /api/v1/works/{id}
			worksGroup.GET("/:id/related", worksHandler.ListRelated) // GET /api/v1/works/{id}/related
		}

		v1.GET("/tags", worksHandler.ListTags)      // GET /api/v1/tags
		v1.GET("/artist", artistHandler.GetProfile) // GET /api/v1/artist
	}
}
