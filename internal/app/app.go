package app

import (
	"fmt"
	"log"

	"github.com/anoixa/daijo-gallery/cache"
	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/database"
	"github.com/anoixa/daijo-gallery/database/repo/works"
	"github.com/anoixa/daijo-gallery/internal/artist"
	"github.com/anoixa/daijo-gallery/internal/gallery"
	"github.com/anoixa/daijo-gallery/internal/imageurl"
	"github.com/anoixa/daijo-gallery/internal/placeholder"
	"github.com/anoixa/daijo-gallery/storage"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	cacheFactory    *cache.Factory
	storageFactory  *storage.Factory

	resolver       *imageurl.Resolver
	resultCache    *cache.ResultCache
	galleryService *gallery.Service
	artistService  *artist.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化所有服务
func (c *Container) Init() error {
	log.Println("Initializing DI container...")

	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}

	storageFactory, err := storage.NewFactory(c.config)
	if err != nil {
		factory.Close()
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}

	cacheFactory, err := cache.NewFactory(c.config)
	if err != nil {
		factory.Close()
		return fmt.Errorf("failed to initialize cache factory: %w", err)
	}

	if err := c.InitWith(factory, cacheFactory, storageFactory); err != nil {
		c.Close()
		return err
	}

	log.Println("DI container initialized successfully")
	return nil
}

// InitWith 使用已创建的工厂初始化服务
func (c *Container) InitWith(databaseFactory *database.Factory, cacheFactory *cache.Factory, storageFactory *storage.Factory) error {
	c.databaseFactory = databaseFactory
	c.cacheFactory = cacheFactory
	c.storageFactory = storageFactory

	c.resolver = imageurl.NewResolver(c.config.StorageOrigin, c.config.StorageBucket, c.config.StorageFallbackImage)
	c.resultCache = cache.NewResultCache(cacheFactory.GetProvider(), c.config.CacheTTL)

	blur := placeholder.NewGenerator(c.resolver, storageFactory.GetDefault(), placeholder.Config{
		MaxBytes: c.config.BlurMaxBytes,
		Timeout:  c.config.BlurFetchTimeout,
	})
	assembler := gallery.NewAssembler(c.resolver, blur, c.config.AssemblerConcurrency)
	repo := works.NewRepository(databaseFactory.GetProvider())
	c.galleryService = gallery.NewService(repo, assembler, c.resultCache, c.config.GalleryPerPage)

	artistService, err := artist.NewService(c.resolver, c.config.ArtistBioPath)
	if err != nil {
		return fmt.Errorf("failed to initialize artist profile: %w", err)
	}
	c.artistService = artistService

	log.Println("Services initialized")
	return nil
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	if c.cacheFactory == nil {
		return nil
	}
	return c.cacheFactory.GetProvider()
}

// GetStorageProvider 获取存储提供者
func (c *Container) GetStorageProvider() storage.Provider {
	if c.storageFactory == nil {
		return nil
	}
	return c.storageFactory.GetDefault()
}

// GetGalleryService 获取画廊服务
func (c *Container) GetGalleryService() *gallery.Service {
	return c.galleryService
}

// GetArtistService 获取作者介绍服务
func (c *Container) GetArtistService() *artist.Service {
	return c.artistService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	log.Println("Closing DI container...")

	if c.cacheFactory != nil {
		if err := c.cacheFactory.Close(); err != nil {
			log.Printf("Error closing cache factory: %v", err)
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database factory: %v", err)
		}
	}

	log.Println("DI container closed")
	return nil
}
