package cache

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"
)

// DefaultResultTTL 查询结果的新鲜期
const DefaultResultTTL = 60 * time.Second

// Entry 描述一次可缓存的调用
// 缓存键由 Op、全部 Params 以及各 Tag 当前版本号组成
type Entry struct {
	Op     string
	Params []string
	Tags   []string
}

// ResultCache 带标签失效的查询结果缓存
//
// 每个标签在缓存中保存一个版本号，条目的键包含其所有标签的版本号。
// Invalidate 提升版本号后，旧键不再被访问，等待自然过期。
// 并发的相同未命中会各自回源，不做合并。
type ResultCache struct {
	provider Provider
	ttl      time.Duration
}

// NewResultCache 创建结果缓存，ttl <= 0 时使用 DefaultResultTTL
func NewResultCache(provider Provider, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{
		provider: provider,
		ttl:      ttl,
	}
}

// TTL 返回新鲜期
func (rc *ResultCache) TTL() time.Duration {
	return rc.ttl
}

// Remember 命中时返回缓存结果，未命中时调用 fn 并写入缓存
// fn 返回错误时不写入缓存，错误原样返回
func Remember[T any](ctx context.Context, rc *ResultCache, entry Entry, fn func(ctx context.Context) (T, error)) (T, error) {
	if rc == nil || rc.provider == nil {
		return fn(ctx)
	}

	key, err := rc.key(ctx, entry)
	if err != nil {
		log.Printf("[ResultCache] Failed to build key for %s, bypassing cache: %v", entry.Op, err)
		return fn(ctx)
	}

	var cached T
	err = rc.provider.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !IsCacheMiss(err) {
		log.Printf("[ResultCache] Failed to read %s: %v", key, err)
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	if err := rc.provider.Set(ctx, key, value, rc.ttl); err != nil {
		log.Printf("[ResultCache] Failed to store %s: %v", key, err)
	}
	return value, nil
}

// Invalidate 使带有任一标签的缓存条目立即失效
func (rc *ResultCache) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		var current int64
		if err := rc.provider.Get(ctx, TagVersion.Build(tag), &current); err != nil && !IsCacheMiss(err) {
			return fmt.Errorf("failed to read version of tag %s: %w", tag, err)
		}

		next := time.Now().UnixNano()
		if next <= current {
			next = current + 1
		}
		if err := rc.provider.Set(ctx, TagVersion.Build(tag), next, 0); err != nil {
			return fmt.Errorf("failed to bump version of tag %s: %w", tag, err)
		}
		log.Printf("[ResultCache] Invalidated tag %s", tag)
	}
	return nil
}

// tagVersion 获取标签版本号
// 版本号不存在时（首次使用或被淘汰）写入新版本，旧条目随之失效
func (rc *ResultCache) tagVersion(ctx context.Context, tag string) (int64, error) {
	var version int64
	err := rc.provider.Get(ctx, TagVersion.Build(tag), &version)
	if err == nil {
		return version, nil
	}
	if !IsCacheMiss(err) {
		return 0, err
	}

	version = time.Now().UnixNano()
	if err := rc.provider.Set(ctx, TagVersion.Build(tag), version, 0); err != nil {
		return 0, err
	}
	return version, nil
}

func (rc *ResultCache) key(ctx context.Context, entry Entry) (string, error) {
	parts := make([]string, 0, 1+len(entry.Params)+len(entry.Tags))
	parts = append(parts, url.QueryEscape(entry.Op))
	for _, param := range entry.Params {
		parts = append(parts, url.QueryEscape(param))
	}

	for _, tag := range entry.Tags {
		version, err := rc.tagVersion(ctx, tag)
		if err != nil {
			return "", fmt.Errorf("failed to resolve version of tag %s: %w", tag, err)
		}
		parts = append(parts, url.QueryEscape(tag)+"@"+strconv.FormatInt(version, 36))
	}

	return Result.Build(parts...), nil
}
