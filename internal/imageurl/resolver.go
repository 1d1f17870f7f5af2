// Package imageurl 将作品中保存的相对存储路径转换为公开图片 URL
package imageurl

import (
	"strings"

	"github.com/anoixa/daijo-gallery/storage"
)

const (
	// DefaultBucket 默认存储桶
	DefaultBucket = "gallery-images"

	// DefaultFallback 路径为空或不合法时返回的图片
	DefaultFallback = "/fallback-image.jpg"
)

// Resolver 图片 URL 解析器，纯字符串拼接，不做任何 I/O
type Resolver struct {
	origin   string
	bucket   string
	fallback string
	prefix   string
}

// NewResolver 创建解析器
func NewResolver(origin, bucket, fallback string) *Resolver {
	origin = strings.TrimRight(origin, "/")
	if bucket == "" {
		bucket = DefaultBucket
	}
	if fallback == "" {
		fallback = DefaultFallback
	}

	return &Resolver{
		origin:   origin,
		bucket:   bucket,
		fallback: fallback,
		prefix:   origin + storage.PublicObjectPath(bucket, ""),
	}
}

// Resolve 返回图片的公开 URL，路径为空或不合法时返回 fallback
// 开头的 "/" 会被去掉，存储键始终是相对路径
func (r *Resolver) Resolve(path string) string {
	path = strings.TrimLeft(path, "/")
	if !storage.IsValidStoragePath(path) {
		return r.fallback
	}
	return r.prefix + path
}

// ObjectKey 从 Resolve 生成的 URL 中取回存储路径
func (r *Resolver) ObjectKey(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, r.prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, r.prefix)
	if !storage.IsValidStoragePath(key) {
		return "", false
	}
	return key, true
}

// Fallback 返回占位图片地址
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Origin 返回存储源
func (r *Resolver) Origin() string {
	return r.origin
}
