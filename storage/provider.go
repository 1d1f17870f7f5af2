package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 画廊只读取对象存储中的图片
type Provider interface {
	// GetWithContext 从存储获取对象，调用方负责关闭
	GetWithContext(ctx context.Context, key string) (io.ReadCloser, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}
