// Package placeholder 为作品图片生成模糊占位图
package placeholder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/anoixa/daijo-gallery/internal/imageurl"
	"github.com/anoixa/daijo-gallery/storage"
	"github.com/anoixa/daijo-gallery/utils"
)

// BlurDataURL 1x1 透明 GIF，任何失败情况下的占位图
const BlurDataURL = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

const (
	defaultMaxBytes = 10 << 20
	defaultTimeout  = 10 * time.Second

	// maxPixels 解码前拒绝像素数过大的图片
	maxPixels = 64 << 20
)

// Config 占位图生成配置
type Config struct {
	MaxBytes int64
	Timeout  time.Duration
}

// Generator 模糊占位图生成器
// 只会读取与存储源 host 完全一致的 URL，不保存任何可变状态，可并发调用
type Generator struct {
	resolver    *imageurl.Resolver
	storage     storage.Provider
	allowedHost string
	maxBytes    int64
	timeout     time.Duration
}

// NewGenerator 创建占位图生成器
func NewGenerator(resolver *imageurl.Resolver, provider storage.Provider, cfg Config) *Generator {
	g := &Generator{
		resolver: resolver,
		storage:  provider,
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
	}
	if g.maxBytes <= 0 {
		g.maxBytes = defaultMaxBytes
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}

	if origin, err := url.Parse(resolver.Origin()); err == nil && isWebScheme(origin.Scheme) {
		g.allowedHost = origin.Host
	} else {
		log.Printf("[Blur] Storage origin %q is not a valid http(s) URL, blur generation disabled", resolver.Origin())
	}
	return g
}

// Generate 返回图片的模糊预览 data URI，失败时返回 BlurDataURL
func (g *Generator) Generate(ctx context.Context, imageURL string) string {
	if imageURL == "" || imageURL == g.resolver.Fallback() {
		return BlurDataURL
	}

	key, ok := g.allowedKey(imageURL)
	if !ok {
		log.Printf("[Blur] Refused to fetch image from disallowed URL: %s", utils.SanitizeLogMessage(imageURL))
		return BlurDataURL
	}

	dataURL, err := g.generate(ctx, key)
	if err != nil {
		log.Printf("[Blur] Failed to generate placeholder for %s: %v", key, err)
		return BlurDataURL
	}
	return dataURL
}

// allowedKey 校验 URL 的 scheme 与 host，并取回存储路径
func (g *Generator) allowedKey(imageURL string) (string, bool) {
	if g.allowedHost == "" || g.storage == nil {
		return "", false
	}

	u, err := url.Parse(imageURL)
	if err != nil || !isWebScheme(u.Scheme) || u.Host != g.allowedHost {
		return "", false
	}

	return g.resolver.ObjectKey(imageURL)
}

func (g *Generator) generate(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := g.storage.GetWithContext(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, g.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > g.maxBytes {
		return "", fmt.Errorf("image exceeds %d bytes", g.maxBytes)
	}

	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image config: %w", err)
	}
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxPixels {
		return "", fmt.Errorf("image dimensions %dx%d too large", imgCfg.Width, imgCfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	return Encode(img)
}

func isWebScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}
