package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig 公开存储源配置
type HTTPConfig struct {
	Origin  string
	Bucket  string
	Timeout time.Duration
}

// HTTPStorage 通过公开 HTTPS 存储源读取对象
// 每次读取只发出一次 GET，不重试，不跟随跨域重定向
type HTTPStorage struct {
	origin *url.URL
	bucket string
	client *http.Client
}

// NewHTTPStorage 创建公开存储源提供者
func NewHTTPStorage(cfg HTTPConfig) (*HTTPStorage, error) {
	origin, err := url.Parse(strings.TrimRight(cfg.Origin, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage origin '%s': %w", cfg.Origin, err)
	}
	if (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return nil, fmt.Errorf("invalid storage origin '%s': scheme must be http or https", cfg.Origin)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     time.Minute,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	host := origin.Host
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if req.URL.Host != host {
				return fmt.Errorf("redirect to foreign host %s refused", req.URL.Host)
			}
			if len(via) >= 3 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}

	return &HTTPStorage{
		origin: origin,
		bucket: cfg.Bucket,
		client: client,
	}, nil
}

// ObjectURL 返回对象的公开 URL
func (s *HTTPStorage) ObjectURL(key string) string {
	return s.origin.String() + PublicObjectPath(s.bucket, key)
}

// GetWithContext 获取对象
func (s *HTTPStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	if !IsValidStoragePath(key) {
		return nil, fmt.Errorf("invalid storage path: %s", key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ObjectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for '%s': %w", key, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", key, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d fetching '%s'", resp.StatusCode, key)
	}

	return resp.Body, nil
}

// Health 检查存储源是否可达
func (s *HTTPStorage) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.origin.String(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("storage origin returned status %d", resp.StatusCode)
	}
	return nil
}

// Name 返回存储名称
func (s *HTTPStorage) Name() string {
	return "http"
}
