package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/daijo-gallery/cache"
	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/database"
	"github.com/anoixa/daijo-gallery/storage"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const healthCheckTimeout = 3 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db      database.Provider
	cache   cache.Provider
	storage storage.Provider
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db database.Provider, cacheProvider cache.Provider, storageProvider storage.Provider) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cacheProvider,
		storage: storageProvider,
	}
}

// Handle 检查数据库、缓存与存储，任一失败时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"database": checkDatabaseHealth(ctx, h.db),
		"cache":    checkCacheHealth(ctx, h.cache),
		"storage":  checkStorageHealth(ctx, h.storage),
	}

	status := "ok"
	httpStatus := http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
