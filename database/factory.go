package database

import (
	"fmt"
	"log"

	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/database/models"
	"gorm.io/gorm"
)

// Factory 数据库工厂 - 负责创建和管理数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing database provider...")

	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())

	return NewFactoryWithProvider(provider), nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate 自动迁移数据库结构
// 线上目录表由外部维护，仅用于本地开发和测试
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	log.Println("Running database auto migration...")
	if err := Migrate(f.provider.DB()); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Println("Database auto migration completed.")
	return nil
}

// Migrate 注册关联表并迁移画廊表结构
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Work{}, "Tags", &models.WorkTag{}); err != nil {
		return fmt.Errorf("failed to setup works_tags join table: %w", err)
	}

	return db.AutoMigrate(
		&models.Tag{},
		&models.Work{},
		&models.WorkTag{},
		&models.WorkImage{},
	)
}
