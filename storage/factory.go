package storage

import (
	"fmt"
	"log"

	"github.com/anoixa/daijo-gallery/config"
)

// Factory 存储工厂 - 负责创建和管理存储提供者
type Factory struct {
	provider Provider
}

// NewFactory 根据 storage_type 创建存储提供者
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing storage provider...")

	var provider Provider
	var err error

	switch cfg.StorageType {
	case "http", "":
		provider, err = NewHTTPStorage(HTTPConfig{
			Origin:  cfg.StorageOrigin,
			Bucket:  cfg.StorageBucket,
			Timeout: cfg.BlurFetchTimeout,
		})
	case "minio":
		provider, err = NewMinioStorage(MinioConfig{
			Endpoint:        cfg.StorageMinioEndpoint,
			AccessKeyID:     cfg.StorageMinioAccessKey,
			SecretAccessKey: cfg.StorageMinioSecretKey,
			UseSSL:          cfg.StorageMinioUseSSL,
			BucketName:      cfg.StorageBucket,
		})
	case "local":
		provider, err = NewLocalStorage(cfg.StorageLocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}

	log.Printf("Storage provider set to: '%s'", provider.Name())
	return NewFactoryWithProvider(provider), nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	return f.provider
}
