package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/daijo-gallery/config"
)

// Factory 缓存工厂 - 根据配置创建缓存提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建缓存工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	var provider Provider
	var err error

	switch cfg.CacheType {
	case "memory", "":
		maxCost := cfg.CacheMaxCostMB << 20
		if maxCost <= 0 {
			maxCost = 64 << 20
		}
		provider, err = NewMemoryCache(MemoryConfig{
			NumCounters: 100000,
			MaxCost:     maxCost,
			BufferItems: 64,
			Metrics:     false,
		})
	case "redis":
		provider, err = NewRedisCache(RedisConfig{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
	default:
		return nil, fmt.Errorf("unsupported cache provider type: %s", cfg.CacheType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache provider: %w", cfg.CacheType, err)
	}

	log.Printf("[CacheFactory] Using %s cache provider", provider.Name())
	return NewFactoryWithProvider(provider), nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取缓存提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭缓存提供者
func (f *Factory) Close() error {
	if f.provider == nil {
		return nil
	}
	return f.provider.Close()
}
